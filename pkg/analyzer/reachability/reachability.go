// Package reachability computes which declarations are reachable from a set
// of entry points and which are dead.
//
// Reachability is the fixed point of four steps applied repeatedly: a
// depth-first closure over reference edges, an ancestor closure over the
// parent chain, a descendant closure over container members (standard mode
// only) and a pass of structural propagation rules that model dispatch the
// reference graph cannot see. Each pass only grows the reachable set, so the
// loop terminates after at most one pass per declaration.
package reachability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// Analyzer runs reachability over a built graph.
type Analyzer struct {
	mode      Mode
	workers   int
	logger    *slog.Logger
	rules     []Rule
	detectors []Detector
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMode sets the analysis mode.
func WithMode(m Mode) Option {
	return func(a *Analyzer) {
		a.mode = m
	}
}

// WithWorkers sets the parallelism of the traversal and rule passes.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRules replaces the propagation rule registry.
func WithRules(rules ...Rule) Option {
	return func(a *Analyzer) {
		a.rules = rules
	}
}

// WithDetectors replaces the deep-mode pattern detectors.
func WithDetectors(detectors ...Detector) Option {
	return func(a *Analyzer) {
		a.detectors = detectors
	}
}

// New creates a new reachability analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		mode:      ModeStandard,
		workers:   runtime.NumCPU(),
		logger:    slog.Default(),
		rules:     DefaultRules(),
		detectors: DefaultDetectors(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mode returns the configured mode.
func (a *Analyzer) Mode() Mode {
	return a.mode
}

// SuppressReason says why an unreachable declaration is not reported.
type SuppressReason string

const (
	SuppressPseudo      SuppressReason = "pseudo"
	SuppressParentDead  SuppressReason = "parent-unreachable"
	SuppressOverride    SuppressReason = "override"
	SuppressConst       SuppressReason = "const"
	SuppressSynthesized SuppressReason = "synthesized"
	SuppressSignature   SuppressReason = "bound-signature"
	SuppressUsedByDead  SuppressReason = "used-by-dead-code"
)

// Result is the output of one reachability run.
type Result struct {
	graph *graph.Graph

	// Reachable holds node indices into the analyzed graph.
	Reachable *graph.NodeSet
	// Entries holds the entry points that were found in the graph.
	Entries *graph.NodeSet
	// Dead lists unreachable, unsuppressed declarations in graph order,
	// followed in deep mode by assign-only members of reachable containers.
	Dead []models.Candidate
	// Suppressed lists unreachable declarations filtered from Dead.
	Suppressed  map[models.DeclarationID]SuppressReason
	EntryPoints int
	Passes      int
}

// IsReachable reports whether id is reachable.
func (r *Result) IsReachable(id models.DeclarationID) bool {
	idx, ok := r.graph.Index(id)
	return ok && r.Reachable.Contains(idx)
}

// ReachableIDs returns the reachable declaration ids in graph order.
func (r *Result) ReachableIDs() []models.DeclarationID {
	ids := make([]models.DeclarationID, 0, r.Reachable.Len())
	r.Reachable.Each(func(idx uint32) bool {
		ids = append(ids, r.graph.At(idx).ID)
		return true
	})
	return ids
}

// Analyze computes the reachable set from entries and derives dead-code
// candidates. Entry ids absent from the graph are ignored. The context is
// checked between passes; a pass always runs to completion.
func (a *Analyzer) Analyze(ctx context.Context, g *graph.Graph, entries []models.DeclarationID) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seeds := graph.NewNodeSet()
	found := 0
	for _, id := range entries {
		if idx, ok := g.Index(id); ok {
			seeds.Add(idx)
			found++
		}
	}
	if found < len(entries) {
		a.logger.Debug("entry points missing from graph", "missing", len(entries)-found)
	}
	reach := seeds.Clone()
	frontier := seeds.ToArray()

	state := &State{Graph: g, Reachable: reach}
	passes := 0
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		passes++

		// 1. Depth-first closure from everything new.
		traversed := append(frontier, a.traverse(g, reach, frontier)...)

		// 2. Ancestors of reachable declarations are reachable.
		var next []uint32
		ancestors := a.ancestors(g, reach, traversed)
		next = append(next, ancestors...)

		// 3. Members of reachable containers, standard mode only.
		if a.mode == ModeStandard {
			grown := append(traversed, ancestors...)
			next = append(next, a.descendants(g, reach, grown)...)
		}

		// 4. Structural propagation rules.
		next = append(next, a.applyRules(state)...)

		a.logger.Debug("reachability pass",
			"pass", passes,
			"traversed", len(traversed),
			"added", len(next),
			"reachable", reach.Len())

		// 5. Anything added in 2-4 may have untraversed outgoing edges.
		frontier = next
	}

	res := &Result{
		graph:       g,
		Reachable:   reach,
		Entries:     seeds,
		Suppressed:  make(map[models.DeclarationID]SuppressReason),
		EntryPoints: seeds.Len(),
		Passes:      passes,
	}
	a.collectCandidates(g, res)
	if a.mode == ModeDeep {
		a.runDeepDetectors(g, res)
	}
	return res, nil
}

// traverse runs a DFS from each start node, in parallel chunks, and merges
// the newly visited nodes into reach. It returns the nodes it added.
func (a *Analyzer) traverse(g *graph.Graph, reach *graph.NodeSet, starts []uint32) []uint32 {
	var (
		mu    sync.Mutex
		added []uint32
	)
	p := pool.New().WithMaxGoroutines(a.workers)
	for _, chunk := range chunks(starts, a.workers) {
		p.Go(func() {
			local := dfs(g, reach, chunk)
			fresh := reach.Merge(local)
			mu.Lock()
			added = append(added, fresh...)
			mu.Unlock()
		})
	}
	p.Wait()
	return added
}

// dfs collects every node reachable from starts that is not already in reach.
func dfs(g *graph.Graph, reach *graph.NodeSet, starts []uint32) []uint32 {
	seen := make(map[uint32]struct{})
	var visited []uint32
	stack := append([]uint32(nil), starts...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g.Successors(n, func(to uint32, _ models.Reference) {
			if _, ok := seen[to]; ok || reach.Contains(to) {
				return
			}
			seen[to] = struct{}{}
			visited = append(visited, to)
			stack = append(stack, to)
		})
	}
	return visited
}

// ancestors walks the parent chain of every node in nodes.
func (a *Analyzer) ancestors(g *graph.Graph, reach *graph.NodeSet, nodes []uint32) []uint32 {
	var added []uint32
	for _, n := range nodes {
		for cur, ok := g.ParentIndex(n); ok; cur, ok = g.ParentIndex(cur) {
			if !reach.Add(cur) {
				break
			}
			added = append(added, cur)
		}
	}
	return added
}

// descendants adds every member of every reachable container in nodes,
// following nested containers with a worklist.
func (a *Analyzer) descendants(g *graph.Graph, reach *graph.NodeSet, nodes []uint32) []uint32 {
	var added []uint32
	var work []uint32
	for _, n := range nodes {
		if g.At(n).Kind.IsContainer() {
			work = append(work, n)
		}
	}
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		for _, child := range g.ChildIndices(n) {
			// Members of a container are its functions, properties and
			// nested types; parameters stay subject to references.
			if g.At(child).Kind == models.KindParameter {
				continue
			}
			if reach.Add(child) {
				added = append(added, child)
				if g.At(child).Kind.IsContainer() {
					work = append(work, child)
				}
			}
		}
	}
	return added
}

// applyRules evaluates every rule against every eligible unreachable
// declaration. Additions are merged only after the whole pass so the result
// does not depend on evaluation order.
func (a *Analyzer) applyRules(s *State) []uint32 {
	if len(a.rules) == 0 {
		return nil
	}
	var eligible []uint32
	for i := 0; i < s.Graph.Len(); i++ {
		idx := uint32(i)
		if s.Reachable.Contains(idx) {
			continue
		}
		p, ok := s.Graph.ParentIndex(idx)
		if ok && !s.Reachable.Contains(p) && !s.Graph.At(p).Kind.IsPseudo() {
			continue
		}
		eligible = append(eligible, idx)
	}

	var (
		mu      sync.Mutex
		matched []uint32
	)
	p := pool.New().WithMaxGoroutines(a.workers)
	for _, chunk := range chunks(eligible, a.workers) {
		p.Go(func() {
			var local []uint32
			for _, idx := range chunk {
				for _, r := range a.rules {
					if r.Reachable(s, idx) {
						local = append(local, idx)
						break
					}
				}
			}
			mu.Lock()
			matched = append(matched, local...)
			mu.Unlock()
		})
	}
	p.Wait()
	return s.Reachable.Merge(matched)
}

// chunks splits items into roughly 4*workers pieces.
func chunks(items []uint32, workers int) [][]uint32 {
	if len(items) == 0 {
		return nil
	}
	n := workers * 4
	if n < 1 {
		n = 1
	}
	size := (len(items) + n - 1) / n
	if size < 64 {
		size = 64
	}
	var out [][]uint32
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
