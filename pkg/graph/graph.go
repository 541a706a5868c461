// Package graph stores declarations and the typed references between them.
//
// Nodes live in an arena indexed by a dense uint32; every DeclarationID maps to
// exactly one index. Edges are kept in a flat slice with per-node in/out lists.
// A Graph is populated once and is safe for concurrent readers afterwards.
package graph

import (
	"strings"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// Edge is one resolved reference between two node indices.
type Edge struct {
	From uint32
	To   uint32
	Ref  models.Reference
}

// Link pairs the declaration on the far end of an edge with the reference.
type Link struct {
	Declaration *models.Declaration
	Reference   models.Reference
}

// Graph is an indexed directed multigraph of declarations.
type Graph struct {
	nodes    []models.Declaration
	index    map[models.DeclarationID]uint32
	byName   map[string][]uint32
	byFQN    map[string]uint32
	children map[uint32][]uint32
	orphans  map[models.DeclarationID][]uint32
	edges    []Edge
	out      [][]int
	in       [][]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:    make(map[models.DeclarationID]uint32),
		byName:   make(map[string][]uint32),
		byFQN:    make(map[string]uint32),
		children: make(map[uint32][]uint32),
		orphans:  make(map[models.DeclarationID][]uint32),
	}
}

// AddDeclaration inserts d and returns its id. The first declaration inserted
// under an id wins; later ones are ignored.
func (g *Graph) AddDeclaration(d models.Declaration) models.DeclarationID {
	if _, ok := g.index[d.ID]; ok {
		return d.ID
	}
	idx := uint32(len(g.nodes))
	g.nodes = append(g.nodes, d)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[d.ID] = idx

	if d.Name != "" {
		g.byName[d.Name] = append(g.byName[d.Name], idx)
	}
	if d.FullyQualifiedName != "" && d.Kind != models.KindImport {
		if _, ok := g.byFQN[d.FullyQualifiedName]; !ok {
			g.byFQN[d.FullyQualifiedName] = idx
		}
	}
	if d.Parent != nil {
		if pi, ok := g.index[*d.Parent]; ok {
			g.children[pi] = append(g.children[pi], idx)
		} else {
			g.orphans[*d.Parent] = append(g.orphans[*d.Parent], idx)
		}
	}
	// Children inserted before their parent.
	if kids, ok := g.orphans[d.ID]; ok {
		g.children[idx] = append(g.children[idx], kids...)
		delete(g.orphans, d.ID)
	}
	return d.ID
}

// AddReference adds an edge from one declaration to another. It is a no-op
// when either id is absent.
func (g *Graph) AddReference(from, to models.DeclarationID, ref models.Reference) {
	f, ok := g.index[from]
	if !ok {
		return
	}
	t, ok := g.index[to]
	if !ok {
		return
	}
	g.addEdge(f, t, ref)
}

func (g *Graph) addEdge(f, t uint32, ref models.Reference) {
	e := len(g.edges)
	g.edges = append(g.edges, Edge{From: f, To: t, Ref: ref})
	g.out[f] = append(g.out[f], e)
	g.in[t] = append(g.in[t], e)
}

// Len returns the number of declarations.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Declaration returns the declaration for id, or nil.
func (g *Graph) Declaration(id models.DeclarationID) *models.Declaration {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	return &g.nodes[idx]
}

// Index returns the node index for id.
func (g *Graph) Index(id models.DeclarationID) (uint32, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// At returns the declaration stored at node index idx.
func (g *Graph) At(idx uint32) *models.Declaration {
	return &g.nodes[idx]
}

// Declarations returns all declarations in insertion order.
func (g *Graph) Declarations() []models.Declaration {
	return g.nodes
}

// ReferencesTo returns every (source, reference) pair pointing at id.
func (g *Graph) ReferencesTo(id models.DeclarationID) []Link {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	links := make([]Link, 0, len(g.in[idx]))
	for _, e := range g.in[idx] {
		edge := g.edges[e]
		links = append(links, Link{Declaration: &g.nodes[edge.From], Reference: edge.Ref})
	}
	return links
}

// ReferencesFrom returns every (target, reference) pair leaving id.
func (g *Graph) ReferencesFrom(id models.DeclarationID) []Link {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	links := make([]Link, 0, len(g.out[idx]))
	for _, e := range g.out[idx] {
		edge := g.edges[e]
		links = append(links, Link{Declaration: &g.nodes[edge.To], Reference: edge.Ref})
	}
	return links
}

// IsReferenced reports whether anything points at id.
func (g *Graph) IsReferenced(id models.DeclarationID) bool {
	idx, ok := g.index[id]
	return ok && len(g.in[idx]) > 0
}

// Children returns the ids of declarations whose parent is id.
func (g *Graph) Children(id models.DeclarationID) []models.DeclarationID {
	idx, ok := g.index[id]
	if !ok {
		return nil
	}
	kids := g.children[idx]
	ids := make([]models.DeclarationID, len(kids))
	for i, k := range kids {
		ids[i] = g.nodes[k].ID
	}
	return ids
}

// CountReads counts incoming read-like references.
func (g *Graph) CountReads(id models.DeclarationID) int {
	return g.countIn(id, models.ReferenceKind.IsRead)
}

// CountWrites counts incoming write references.
func (g *Graph) CountWrites(id models.DeclarationID) int {
	return g.countIn(id, models.ReferenceKind.IsWrite)
}

func (g *Graph) countIn(id models.DeclarationID, match func(models.ReferenceKind) bool) int {
	idx, ok := g.index[id]
	if !ok {
		return 0
	}
	n := 0
	for _, e := range g.in[idx] {
		if match(g.edges[e].Ref.Kind) {
			n++
		}
	}
	return n
}

// ByName returns every declaration with the given simple name.
func (g *Graph) ByName(name string) []models.DeclarationID {
	idxs := g.byName[name]
	ids := make([]models.DeclarationID, len(idxs))
	for i, idx := range idxs {
		ids[i] = g.nodes[idx].ID
	}
	return ids
}

// ByFQN looks up a declaration by fully qualified name.
func (g *Graph) ByFQN(fqn string) (models.DeclarationID, bool) {
	idx, ok := g.byFQN[fqn]
	if !ok {
		return models.DeclarationID{}, false
	}
	return g.nodes[idx].ID, true
}

// NormalizeTypeName strips generic arguments, constructor calls, nullability
// and delegation clauses from a type expression.
func NormalizeTypeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, " by "); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexAny(name, "<("); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(strings.TrimSuffix(name, "?"))
}

// Successors calls fn for each edge target of node idx.
func (g *Graph) Successors(idx uint32, fn func(to uint32, ref models.Reference)) {
	for _, e := range g.out[idx] {
		fn(g.edges[e].To, g.edges[e].Ref)
	}
}

// Predecessors calls fn for each edge source of node idx.
func (g *Graph) Predecessors(idx uint32, fn func(from uint32, ref models.Reference)) {
	for _, e := range g.in[idx] {
		fn(g.edges[e].From, g.edges[e].Ref)
	}
}

// ParentIndex returns the node index of idx's parent.
func (g *Graph) ParentIndex(idx uint32) (uint32, bool) {
	p := g.nodes[idx].Parent
	if p == nil {
		return 0, false
	}
	pi, ok := g.index[*p]
	return pi, ok
}

// ChildIndices returns the node indices of idx's children.
func (g *Graph) ChildIndices(idx uint32) []uint32 {
	return g.children[idx]
}
