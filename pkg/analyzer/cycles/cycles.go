// Package cycles finds dead cycles: groups of declarations that only
// reference each other and that nothing reachable uses.
package cycles

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// Detector runs strongly connected component analysis over a graph.
type Detector struct {
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a detector.
func New(opts ...Option) *Detector {
	d := &Detector{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect reports every dead cycle and zombie pair in g. reachable holds node
// indices of g.
func (d *Detector) Detect(g *graph.Graph, reachable *graph.NodeSet) *models.CycleReport {
	report := &models.CycleReport{}
	if g.Len() == 0 {
		return report
	}

	inCycle := make(map[uint32]bool)
	for _, scc := range topo.TarjanSCC(g.Directed()) {
		if len(scc) < 2 {
			continue
		}
		members := make([]uint32, len(scc))
		for i, n := range scc {
			members[i] = uint32(n.ID())
		}
		if !isDead(g, reachable, members) {
			continue
		}
		for _, m := range members {
			inCycle[m] = true
		}
		report.Cycles = append(report.Cycles, describe(g, members))
	}

	slices.SortStableFunc(report.Cycles, func(a, b models.CycleInfo) int {
		if a.Size != b.Size {
			return b.Size - a.Size
		}
		return a.Members[0].Compare(b.Members[0])
	})

	report.ZombiePairs = zombiePairs(g, reachable, inCycle)

	for _, c := range report.Cycles {
		report.Stats.NumDeadCycles++
		report.Stats.TotalDeclarationsInCycles += c.Size
		report.Stats.LargestCycleSize = max(report.Stats.LargestCycleSize, c.Size)
	}
	report.Stats.NumZombiePairs = len(report.ZombiePairs)

	d.logger.Debug("cycle detection complete",
		"dead_cycles", report.Stats.NumDeadCycles,
		"zombie_pairs", report.Stats.NumZombiePairs)
	return report
}

// isDead reports whether no member is reachable and nothing outside the
// component references a member.
func isDead(g *graph.Graph, reachable *graph.NodeSet, members []uint32) bool {
	inside := make(map[uint32]bool, len(members))
	for _, m := range members {
		if reachable != nil && reachable.Contains(m) {
			return false
		}
		inside[m] = true
	}
	external := false
	for _, m := range members {
		g.Predecessors(m, func(from uint32, _ models.Reference) {
			if !inside[from] {
				external = true
			}
		})
		if external {
			return false
		}
	}
	return true
}

func describe(g *graph.Graph, members []uint32) models.CycleInfo {
	slices.SortFunc(members, func(a, b uint32) int {
		return g.At(a).ID.Compare(g.At(b).ID)
	})
	info := models.CycleInfo{
		Members: make([]models.DeclarationID, len(members)),
		IsDead:  true,
		Size:    len(members),
	}
	inside := make(map[uint32]bool, len(members))
	for i, m := range members {
		info.Members[i] = g.At(m).ID
		inside[m] = true
		if decl := g.At(m); decl.Kind.IsSignificant() {
			info.Names = append(info.Names, decl.DisplayName())
		}
	}
	seen := make(map[[2]uint32]bool)
	for _, m := range members {
		from := g.At(m)
		if !from.Kind.IsSignificant() {
			continue
		}
		g.Successors(m, func(to uint32, ref models.Reference) {
			target := g.At(to)
			if !inside[to] || to == m || !target.Kind.IsSignificant() || seen[[2]uint32{m, to}] {
				return
			}
			seen[[2]uint32{m, to}] = true
			info.Edges = append(info.Edges, models.CycleEdge{
				From: from.DisplayName(),
				To:   target.DisplayName(),
				Kind: ref.Kind,
			})
		})
	}
	return info
}

// zombiePairs finds unreachable A, B with A→B and B→A that are not already
// part of a reported dead cycle.
func zombiePairs(g *graph.Graph, reachable *graph.NodeSet, inCycle map[uint32]bool) []models.ZombiePair {
	var pairs []models.ZombiePair
	for i := 0; i < g.Len(); i++ {
		a := uint32(i)
		if inCycle[a] || (reachable != nil && reachable.Contains(a)) {
			continue
		}
		seen := make(map[uint32]bool)
		g.Successors(a, func(b uint32, _ models.Reference) {
			if b <= a || seen[b] || inCycle[b] || (reachable != nil && reachable.Contains(b)) {
				return
			}
			seen[b] = true
			if referencesTo(g, b, a) {
				da, db := g.At(a), g.At(b)
				pairs = append(pairs, models.ZombiePair{
					A: da.ID, B: db.ID,
					NameA: da.DisplayName(), NameB: db.DisplayName(),
				})
			}
		})
	}
	return pairs
}

func referencesTo(g *graph.Graph, from, to uint32) bool {
	found := false
	g.Successors(from, func(t uint32, _ models.Reference) {
		if t == to {
			found = true
		}
	})
	return found
}
