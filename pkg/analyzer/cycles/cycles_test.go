package cycles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

type testGraph struct {
	g   *graph.Graph
	ids map[string]models.DeclarationID
	n   uint32
}

func newTestGraph() *testGraph {
	return &testGraph{g: graph.New(), ids: make(map[string]models.DeclarationID)}
}

func (tg *testGraph) add(name string, kind models.DeclarationKind) {
	tg.n += 10
	d := models.Declaration{
		ID:   models.NewDeclarationID("a.kt", tg.n, tg.n+1),
		Name: name,
		Kind: kind,
	}
	tg.ids[name] = tg.g.AddDeclaration(d)
}

func (tg *testGraph) ref(from, to string) {
	tg.g.AddReference(tg.ids[from], tg.ids[to], models.Reference{Kind: models.RefCall, Name: to})
}

func (tg *testGraph) reachable(names ...string) *graph.NodeSet {
	s := graph.NewNodeSet()
	for _, n := range names {
		idx, _ := tg.g.Index(tg.ids[n])
		s.Add(idx)
	}
	return s
}

func TestDetect_IsolatedPairIsDeadCycle(t *testing.T) {
	tg := newTestGraph()
	tg.add("A", models.KindFunction)
	tg.add("B", models.KindFunction)
	tg.ref("A", "B")
	tg.ref("B", "A")

	report := New().Detect(tg.g, tg.reachable())
	require.Len(t, report.Cycles, 1)
	c := report.Cycles[0]
	assert.Equal(t, 2, c.Size)
	assert.True(t, c.IsDead)
	assert.ElementsMatch(t, []models.DeclarationID{tg.ids["A"], tg.ids["B"]}, c.Members)
	assert.Equal(t, []string{"A", "B"}, c.Names)
	assert.Len(t, c.Edges, 2)
	assert.Empty(t, report.ZombiePairs, "pair is already covered by the cycle")
	assert.Equal(t, models.CycleStats{
		NumDeadCycles:             1,
		LargestCycleSize:          2,
		TotalDeclarationsInCycles: 2,
	}, report.Stats)
}

func TestDetect_ReachableCycleIsAlive(t *testing.T) {
	tg := newTestGraph()
	tg.add("E", models.KindFunction)
	tg.add("A", models.KindFunction)
	tg.add("B", models.KindFunction)
	tg.ref("E", "A")
	tg.ref("A", "B")
	tg.ref("B", "A")

	report := New().Detect(tg.g, tg.reachable("E", "A", "B"))
	assert.Empty(t, report.Cycles)
	assert.Empty(t, report.ZombiePairs)
}

func TestDetect_ExternalReferenceKeepsCycleAlive(t *testing.T) {
	tg := newTestGraph()
	tg.add("caller", models.KindFunction)
	tg.add("A", models.KindFunction)
	tg.add("B", models.KindFunction)
	tg.ref("caller", "A")
	tg.ref("A", "B")
	tg.ref("B", "A")

	report := New().Detect(tg.g, tg.reachable())
	assert.Empty(t, report.Cycles)
	require.Len(t, report.ZombiePairs, 1)
	assert.Equal(t, "A", report.ZombiePairs[0].NameA)
	assert.Equal(t, "B", report.ZombiePairs[0].NameB)
	assert.Equal(t, 1, report.Stats.NumZombiePairs)
}

func TestDetect_SortsBySizeAndFiltersNames(t *testing.T) {
	tg := newTestGraph()
	tg.add("small1", models.KindFunction)
	tg.add("small2", models.KindFunction)
	tg.ref("small1", "small2")
	tg.ref("small2", "small1")

	tg.add("Big", models.KindClass)
	tg.add("big1", models.KindMethod)
	tg.add("value", models.KindParameter)
	tg.ref("Big", "big1")
	tg.ref("big1", "value")
	tg.ref("value", "Big")

	report := New().Detect(tg.g, tg.reachable())
	require.Len(t, report.Cycles, 2)
	assert.Equal(t, 3, report.Cycles[0].Size)
	assert.Equal(t, []string{"Big", "big1"}, report.Cycles[0].Names, "parameters are not significant")
	assert.Equal(t, 2, report.Cycles[1].Size)
	assert.Equal(t, 3, report.Stats.LargestCycleSize)
	assert.Equal(t, 5, report.Stats.TotalDeclarationsInCycles)
}

func TestDetect_CycleSoundness(t *testing.T) {
	tg := newTestGraph()
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		tg.add(n, models.KindFunction)
	}
	tg.ref("a", "b")
	tg.ref("b", "c")
	tg.ref("c", "a")
	tg.ref("c", "d")
	tg.ref("d", "e")

	report := New().Detect(tg.g, tg.reachable())
	require.Len(t, report.Cycles, 1)
	members := make(map[models.DeclarationID]bool)
	for _, m := range report.Cycles[0].Members {
		members[m] = true
	}
	for _, m := range report.Cycles[0].Members {
		for _, l := range tg.g.ReferencesTo(m) {
			assert.True(t, members[l.Declaration.ID], "edge enters the cycle from outside")
		}
	}
}

func TestDetect_EmptyGraph(t *testing.T) {
	report := New().Detect(graph.New(), graph.NewNodeSet())
	assert.Empty(t, report.Cycles)
	assert.Zero(t, report.Stats)
}
