package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

func decl(file string, start uint32, name string, kind models.DeclarationKind, parent *models.DeclarationID) models.Declaration {
	return models.Declaration{
		ID:         models.NewDeclarationID(file, start, start+1),
		Name:       name,
		Kind:       kind,
		Visibility: models.VisibilityPublic,
		Location:   models.Location{File: file, Line: start},
		Parent:     parent,
	}
}

func TestGraph_AddDeclarationFirstWriteWins(t *testing.T) {
	g := New()
	a := decl("a.kt", 1, "A", models.KindClass, nil)
	g.AddDeclaration(a)

	dup := a
	dup.Name = "B"
	id := g.AddDeclaration(dup)

	assert.Equal(t, a.ID, id)
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, "A", g.Declaration(a.ID).Name)
}

func TestGraph_AddReferenceAbsentIsNoop(t *testing.T) {
	g := New()
	a := decl("a.kt", 1, "A", models.KindClass, nil)
	g.AddDeclaration(a)
	missing := models.NewDeclarationID("x.kt", 0, 1)

	g.AddReference(a.ID, missing, models.Reference{Kind: models.RefCall})
	g.AddReference(missing, a.ID, models.Reference{Kind: models.RefCall})

	assert.Equal(t, 0, g.EdgeCount())
	assert.False(t, g.IsReferenced(a.ID))
}

func TestGraph_AbsentQueriesAreEmpty(t *testing.T) {
	g := New()
	id := models.NewDeclarationID("nope.kt", 1, 2)
	assert.Nil(t, g.Declaration(id))
	assert.Empty(t, g.ReferencesTo(id))
	assert.Empty(t, g.ReferencesFrom(id))
	assert.Empty(t, g.Children(id))
	assert.False(t, g.IsReferenced(id))
	assert.Zero(t, g.CountReads(id))
	assert.Zero(t, g.CountWrites(id))
}

func TestGraph_ReferencesAndCounts(t *testing.T) {
	g := New()
	cls := decl("a.kt", 1, "Holder", models.KindClass, nil)
	prop := decl("a.kt", 5, "value", models.KindProperty, &cls.ID)
	fn := decl("a.kt", 9, "update", models.KindMethod, &cls.ID)
	for _, d := range []models.Declaration{cls, prop, fn} {
		g.AddDeclaration(d)
	}
	g.AddReference(fn.ID, prop.ID, models.Reference{Kind: models.RefWrite, Name: "value"})
	g.AddReference(fn.ID, prop.ID, models.Reference{Kind: models.RefWrite, Name: "value"})
	g.AddReference(fn.ID, prop.ID, models.Reference{Kind: models.RefRead, Name: "value"})

	assert.Equal(t, 2, g.CountWrites(prop.ID))
	assert.Equal(t, 1, g.CountReads(prop.ID))
	assert.True(t, g.IsReferenced(prop.ID))

	to := g.ReferencesTo(prop.ID)
	require.Len(t, to, 3)
	assert.Equal(t, "update", to[0].Declaration.Name)

	from := g.ReferencesFrom(fn.ID)
	require.Len(t, from, 3)
	assert.Equal(t, "value", from[0].Declaration.Name)
}

func TestGraph_ChildrenBeforeParent(t *testing.T) {
	g := New()
	cls := decl("a.kt", 1, "Holder", models.KindClass, nil)
	m1 := decl("a.kt", 5, "one", models.KindMethod, &cls.ID)
	m2 := decl("a.kt", 9, "two", models.KindMethod, &cls.ID)

	g.AddDeclaration(m1)
	g.AddDeclaration(cls)
	g.AddDeclaration(m2)

	assert.ElementsMatch(t, []models.DeclarationID{m1.ID, m2.ID}, g.Children(cls.ID))
	assert.Empty(t, g.Children(m1.ID))
}

func TestNormalizeTypeName(t *testing.T) {
	tests := map[string]string{
		"Foo":                  "Foo",
		"Foo<Bar>":             "Foo",
		"Foo()":                "Foo",
		"com.a.Foo<T, U>":      "com.a.Foo",
		"Listener by delegate": "Listener",
		"Foo?":                 "Foo",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTypeName(in), in)
	}
}

func TestGraph_Directed(t *testing.T) {
	g := New()
	a := decl("a.kt", 1, "a", models.KindFunction, nil)
	b := decl("a.kt", 5, "b", models.KindFunction, nil)
	g.AddDeclaration(a)
	g.AddDeclaration(b)
	g.AddReference(a.ID, b.ID, models.Reference{Kind: models.RefCall})
	g.AddReference(a.ID, b.ID, models.Reference{Kind: models.RefCall})
	g.AddReference(a.ID, a.ID, models.Reference{Kind: models.RefCall})

	d := g.Directed()
	assert.Equal(t, 2, d.Nodes().Len())
	assert.True(t, d.HasEdgeFromTo(0, 1))
	assert.False(t, d.HasEdgeFromTo(0, 0))
}

func TestNodeSet(t *testing.T) {
	s := NewNodeSet()
	assert.True(t, s.Add(3))
	assert.False(t, s.Add(3))
	assert.Equal(t, []uint32{5, 7}, s.Merge([]uint32{3, 5, 7}))
	assert.Equal(t, 3, s.Len())

	assert.Equal(t, []uint32{1, 9}, s.Merge([]uint32{1, 3, 9}))
	assert.Equal(t, []uint32{1, 3, 5, 7, 9}, s.ToArray())

	clone := s.Clone()
	clone.Add(100)
	assert.False(t, s.Contains(100))

	var seen []uint32
	s.Each(func(idx uint32) bool {
		seen = append(seen, idx)
		return idx < 5
	})
	assert.Equal(t, []uint32{1, 3, 5}, seen)
}
