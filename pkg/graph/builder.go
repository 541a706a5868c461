package graph

import (
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// BuildStats describes one graph build.
type BuildStats struct {
	Files        int `json:"files"`
	Declarations int `json:"declarations"`
	Edges        int `json:"edges"`
	References   int `json:"references"`
	Unresolved   int `json:"unresolved"`
	Ambiguous    int `json:"ambiguous"`
}

// Builder turns parsed files into a Graph. All declarations are inserted
// first so that name resolution sees the global indices.
type Builder struct {
	workers int
	logger  *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWorkers sets the number of resolution workers.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type pendingEdge struct {
	from, to uint32
	ref      models.Reference
}

// fileScope holds what a reference in one file can see besides global names.
type fileScope struct {
	pkg       string
	explicit  map[string][]uint32 // imported simple name -> import declarations
	wildcards []uint32            // wildcard import declarations
}

// Build constructs the graph from every parsed file.
func (b *Builder) Build(files []models.ParsedFile) (*Graph, BuildStats) {
	g := New()
	stats := BuildStats{Files: len(files)}

	for i := range files {
		for _, d := range files[i].Declarations {
			g.AddDeclaration(d)
		}
	}

	var unresolved, ambiguous, refs atomic.Int64
	results := make([][]pendingEdge, len(files))

	p := pool.New().WithMaxGoroutines(b.workers)
	for i := range files {
		p.Go(func() {
			r := &resolver{g: g, scope: g.scopeFor(&files[i])}
			results[i] = r.resolveFile(&files[i])
			unresolved.Add(r.unresolved)
			ambiguous.Add(r.ambiguous)
			refs.Add(int64(len(files[i].References)))
		})
	}
	p.Wait()

	for _, edges := range results {
		for _, e := range edges {
			g.addEdge(e.from, e.to, e.ref)
		}
	}

	stats.Declarations = g.Len()
	stats.Edges = g.EdgeCount()
	stats.References = int(refs.Load())
	stats.Unresolved = int(unresolved.Load())
	stats.Ambiguous = int(ambiguous.Load())
	b.logger.Debug("graph built",
		"files", stats.Files,
		"declarations", stats.Declarations,
		"edges", stats.Edges,
		"unresolved", stats.Unresolved,
		"ambiguous", stats.Ambiguous)
	return g, stats
}

func (g *Graph) scopeFor(f *models.ParsedFile) fileScope {
	s := fileScope{pkg: f.Package, explicit: make(map[string][]uint32)}
	for _, d := range f.Declarations {
		if d.Kind != models.KindImport {
			continue
		}
		idx, ok := g.index[d.ID]
		if !ok {
			continue
		}
		if strings.HasSuffix(d.FullyQualifiedName, ".*") || d.Name == "*" {
			s.wildcards = append(s.wildcards, idx)
			continue
		}
		s.explicit[d.Name] = append(s.explicit[d.Name], idx)
	}
	return s
}

type resolver struct {
	g          *Graph
	scope      fileScope
	unresolved int64
	ambiguous  int64
}

func (r *resolver) resolveFile(f *models.ParsedFile) []pendingEdge {
	var edges []pendingEdge
	for i := range f.References {
		ref := &f.References[i]
		from, ok := r.g.index[ref.From]
		if !ok {
			r.unresolved++
			continue
		}
		targets, via := r.resolve(ref, from)
		payload := models.Reference{Kind: ref.Kind, Name: ref.Name, Location: ref.Location}
		for _, t := range targets {
			edges = append(edges, pendingEdge{from: from, to: t, ref: payload})
		}
		if len(targets) == 0 {
			r.unresolved++
		} else if len(targets) > 1 {
			r.ambiguous++
		}
		for _, imp := range r.importsUsed(ref, via, len(targets) == 0) {
			edges = append(edges, pendingEdge{from: from, to: imp, ref: models.Reference{
				Kind: models.RefImport, Name: ref.Name, Location: ref.Location,
			}})
		}
	}

	for _, d := range f.Declarations {
		if len(d.SuperTypes) == 0 {
			continue
		}
		from := r.g.index[d.ID]
		for _, st := range d.SuperTypes {
			name := NormalizeTypeName(st)
			if name == "" {
				continue
			}
			simple := name[strings.LastIndexByte(name, '.')+1:]
			ref := &models.UnresolvedReference{From: d.ID, Name: simple, Kind: models.RefInheritance}
			if strings.Contains(name, ".") {
				ref.QualifiedName = name
			}
			targets, via := r.resolve(ref, from)
			payload := models.Reference{Kind: models.RefInheritance, Name: simple, Location: d.Location}
			for _, t := range targets {
				if r.g.nodes[t].Kind.IsContainer() && t != from {
					edges = append(edges, pendingEdge{from: from, to: t, ref: payload})
				}
			}
			for _, imp := range r.importsUsed(ref, via, len(targets) == 0) {
				edges = append(edges, pendingEdge{from: from, to: imp, ref: models.Reference{
					Kind: models.RefImport, Name: simple, Location: d.Location,
				}})
			}
		}
	}
	return edges
}

// resolve returns the target indices for ref and the import declaration it was
// resolved through, if any. Order: qualified name, imports in scope, same
// package, then every declaration sharing the simple name.
func (r *resolver) resolve(ref *models.UnresolvedReference, from uint32) ([]uint32, int) {
	if ref.QualifiedName != "" {
		if ids := r.g.fqnAll(ref.QualifiedName); len(ids) > 0 {
			return ids, -1
		}
	}

	if imports := r.scope.explicit[ref.Name]; len(imports) > 0 {
		for _, imp := range imports {
			if ids := r.g.fqnAll(r.g.nodes[imp].FullyQualifiedName); len(ids) > 0 {
				return ids, int(imp)
			}
		}
		// Explicitly imported from outside the analyzed sources.
		return nil, -1
	}
	for _, fq := range ref.ImportsInScope {
		if strings.HasSuffix(fq, ".*") {
			if ids := r.g.fqnAll(strings.TrimSuffix(fq, "*") + ref.Name); len(ids) > 0 {
				return ids, -1
			}
			continue
		}
		if fq == ref.Name || strings.HasSuffix(fq, "."+ref.Name) {
			if ids := r.g.fqnAll(fq); len(ids) > 0 {
				return ids, -1
			}
		}
	}
	for _, imp := range r.scope.wildcards {
		pkg := strings.TrimSuffix(r.g.nodes[imp].FullyQualifiedName, "*")
		if ids := r.g.fqnAll(pkg + ref.Name); len(ids) > 0 {
			return ids, int(imp)
		}
	}
	if r.scope.pkg != "" {
		if ids := r.g.fqnAll(r.scope.pkg + "." + ref.Name); len(ids) > 0 {
			return ids, -1
		}
	}

	var ids []uint32
	for _, idx := range r.g.byName[ref.Name] {
		d := &r.g.nodes[idx]
		if d.Kind == models.KindImport || d.Kind.IsPseudo() {
			continue
		}
		if d.Kind == models.KindParameter && !r.g.encloses(idx, from) {
			continue
		}
		ids = append(ids, idx)
	}
	return ids, -1
}

// importsUsed returns the import declarations in scope that ref accounts for.
// Explicit imports match by simple name even when the target is outside the
// graph. Wildcard imports are credited when they resolved the reference or
// when the reference resolved to nothing at all.
func (r *resolver) importsUsed(ref *models.UnresolvedReference, via int, unresolved bool) []uint32 {
	used := r.scope.explicit[ref.Name]
	if via >= 0 {
		for _, w := range r.scope.wildcards {
			if int(w) == via {
				used = append(used[:len(used):len(used)], w)
			}
		}
	} else if unresolved && len(used) == 0 {
		used = r.scope.wildcards
	}
	return used
}

// fqnAll returns every declaration whose FQN equals fqn, so overloads sharing
// a qualified name all resolve.
func (g *Graph) fqnAll(fqn string) []uint32 {
	first, ok := g.byFQN[fqn]
	if !ok {
		return nil
	}
	name := g.nodes[first].Name
	var ids []uint32
	for _, idx := range g.byName[name] {
		if g.nodes[idx].FullyQualifiedName == fqn && g.nodes[idx].Kind != models.KindImport {
			ids = append(ids, idx)
		}
	}
	if len(ids) == 0 {
		ids = append(ids, first)
	}
	return ids
}

// encloses reports whether the declaration owning param is from or one of
// from's ancestors.
func (g *Graph) encloses(param, from uint32) bool {
	owner, ok := g.ParentIndex(param)
	if !ok {
		return false
	}
	for cur, ok := from, true; ok; cur, ok = g.ParentIndex(cur) {
		if cur == owner {
			return true
		}
	}
	return false
}
