package graph

import (
	"gonum.org/v1/gonum/graph/simple"
)

// Directed returns a gonum view of the reference graph. Node IDs equal the
// arena indices; parallel edges collapse and self-loops are skipped because
// gonum simple graphs do not support them.
func (g *Graph) Directed() *simple.DirectedGraph {
	d := simple.NewDirectedGraph()
	for i := range g.nodes {
		d.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.edges {
		if e.From == e.To {
			continue
		}
		d.SetEdge(simple.Edge{F: simple.Node(int64(e.From)), T: simple.Node(int64(e.To))})
	}
	return d
}
