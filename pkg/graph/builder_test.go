package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

func withFQN(d models.Declaration, fqn string) models.Declaration {
	d.FullyQualifiedName = fqn
	return d
}

func targets(g *Graph, from models.DeclarationID) []string {
	var names []string
	for _, l := range g.ReferencesFrom(from) {
		names = append(names, l.Declaration.DisplayName())
	}
	return names
}

func TestBuilder_ResolvesQualifiedName(t *testing.T) {
	caller := withFQN(decl("a/Main.kt", 1, "main", models.KindFunction, nil), "app.main")
	target := withFQN(decl("b/Util.kt", 1, "Util", models.KindClass, nil), "lib.Util")
	other := withFQN(decl("c/Util.kt", 1, "Util", models.KindClass, nil), "other.Util")

	files := []models.ParsedFile{
		{Path: "a/Main.kt", Declarations: []models.Declaration{caller}, References: []models.UnresolvedReference{
			{From: caller.ID, Name: "Util", QualifiedName: "lib.Util", Kind: models.RefInstantiation},
		}},
		{Path: "b/Util.kt", Declarations: []models.Declaration{target}},
		{Path: "c/Util.kt", Declarations: []models.Declaration{other}},
	}

	g, stats := NewBuilder(WithWorkers(2)).Build(files)
	assert.Equal(t, []string{"lib.Util"}, targets(g, caller.ID))
	assert.Equal(t, 3, stats.Declarations)
	assert.Equal(t, 0, stats.Unresolved)
}

func TestBuilder_ResolvesThroughImport(t *testing.T) {
	caller := withFQN(decl("a/Main.kt", 10, "main", models.KindFunction, nil), "app.main")
	imp := withFQN(decl("a/Main.kt", 1, "Util", models.KindImport, nil), "lib.Util")
	target := withFQN(decl("b/Util.kt", 1, "Util", models.KindClass, nil), "lib.Util")
	other := withFQN(decl("c/Util.kt", 1, "Util", models.KindClass, nil), "other.Util")

	files := []models.ParsedFile{
		{Path: "a/Main.kt", Declarations: []models.Declaration{imp, caller}, References: []models.UnresolvedReference{
			{From: caller.ID, Name: "Util", Kind: models.RefCall},
		}},
		{Path: "b/Util.kt", Declarations: []models.Declaration{target}},
		{Path: "c/Util.kt", Declarations: []models.Declaration{other}},
	}

	g, _ := NewBuilder().Build(files)
	links := g.ReferencesFrom(caller.ID)
	require.Len(t, links, 2)
	kinds := map[models.ReferenceKind]models.DeclarationID{}
	for _, l := range links {
		kinds[l.Reference.Kind] = l.Declaration.ID
	}
	assert.Equal(t, target.ID, kinds[models.RefCall])
	assert.Equal(t, imp.ID, kinds[models.RefImport])
	assert.False(t, g.IsReferenced(other.ID))
}

func TestBuilder_ExternalImportDoesNotFallBack(t *testing.T) {
	caller := decl("a/Main.kt", 10, "main", models.KindFunction, nil)
	imp := withFQN(decl("a/Main.kt", 1, "View", models.KindImport, nil), "android.view.View")
	local := withFQN(decl("b/View.kt", 1, "View", models.KindClass, nil), "app.View")

	files := []models.ParsedFile{
		{Path: "a/Main.kt", Declarations: []models.Declaration{imp, caller}, References: []models.UnresolvedReference{
			{From: caller.ID, Name: "View", Kind: models.RefType},
		}},
		{Path: "b/View.kt", Declarations: []models.Declaration{local}},
	}

	g, stats := NewBuilder().Build(files)
	assert.False(t, g.IsReferenced(local.ID))
	assert.True(t, g.IsReferenced(imp.ID))
	assert.Equal(t, 1, stats.Unresolved)
}

func TestBuilder_WildcardImport(t *testing.T) {
	caller := decl("a/Main.kt", 10, "main", models.KindFunction, nil)
	wild := withFQN(decl("a/Main.kt", 1, "*", models.KindImport, nil), "lib.*")
	target := withFQN(decl("b/Util.kt", 1, "Util", models.KindClass, nil), "lib.Util")

	files := []models.ParsedFile{
		{Path: "a/Main.kt", Declarations: []models.Declaration{wild, caller}, References: []models.UnresolvedReference{
			{From: caller.ID, Name: "Util", Kind: models.RefCall},
		}},
		{Path: "b/Util.kt", Declarations: []models.Declaration{target}},
	}

	g, _ := NewBuilder().Build(files)
	assert.True(t, g.IsReferenced(target.ID))
	assert.True(t, g.IsReferenced(wild.ID))
}

func TestBuilder_AmbiguousNameOverApproximates(t *testing.T) {
	caller := decl("a/Main.kt", 10, "main", models.KindFunction, nil)
	f1 := decl("b/One.kt", 1, "render", models.KindFunction, nil)
	f2 := decl("c/Two.kt", 1, "render", models.KindFunction, nil)

	files := []models.ParsedFile{
		{Path: "a/Main.kt", Declarations: []models.Declaration{caller}, References: []models.UnresolvedReference{
			{From: caller.ID, Name: "render", Kind: models.RefCall},
			{From: caller.ID, Name: "missing", Kind: models.RefCall},
		}},
		{Path: "b/One.kt", Declarations: []models.Declaration{f1}},
		{Path: "c/Two.kt", Declarations: []models.Declaration{f2}},
	}

	g, stats := NewBuilder().Build(files)
	assert.True(t, g.IsReferenced(f1.ID))
	assert.True(t, g.IsReferenced(f2.ID))
	assert.Equal(t, 1, stats.Ambiguous)
	assert.Equal(t, 1, stats.Unresolved)
	assert.Equal(t, 2, stats.Edges)
}

func TestBuilder_ParametersResolveOnlyInsideOwner(t *testing.T) {
	fnA := decl("a.kt", 1, "a", models.KindFunction, nil)
	paramA := decl("a.kt", 2, "x", models.KindParameter, &fnA.ID)
	fnB := decl("a.kt", 10, "b", models.KindFunction, nil)
	paramB := decl("a.kt", 11, "x", models.KindParameter, &fnB.ID)

	files := []models.ParsedFile{{
		Path:         "a.kt",
		Declarations: []models.Declaration{fnA, paramA, fnB, paramB},
		References: []models.UnresolvedReference{
			{From: fnA.ID, Name: "x", Kind: models.RefRead},
		},
	}}

	g, _ := NewBuilder().Build(files)
	assert.True(t, g.IsReferenced(paramA.ID))
	assert.False(t, g.IsReferenced(paramB.ID))
}

func TestBuilder_SuperTypesBecomeInheritanceEdges(t *testing.T) {
	base := withFQN(decl("a.kt", 1, "Shape", models.KindClass, nil), "geo.Shape")
	sub := withFQN(decl("a.kt", 10, "Circle", models.KindClass, nil), "geo.Circle")
	sub.SuperTypes = []string{"Shape()"}

	g, _ := NewBuilder().Build([]models.ParsedFile{{
		Path: "a.kt", Package: "geo", Declarations: []models.Declaration{base, sub},
	}})

	links := g.ReferencesTo(base.ID)
	require.Len(t, links, 1)
	assert.Equal(t, models.RefInheritance, links[0].Reference.Kind)
	assert.Equal(t, "Circle", links[0].Declaration.Name)
}

func TestBuilder_OverloadsShareQualifiedName(t *testing.T) {
	caller := decl("a.kt", 1, "main", models.KindFunction, nil)
	o1 := withFQN(decl("b.kt", 1, "log", models.KindFunction, nil), "util.log")
	o2 := withFQN(decl("b.kt", 9, "log", models.KindFunction, nil), "util.log")

	g, _ := NewBuilder().Build([]models.ParsedFile{
		{Path: "a.kt", Declarations: []models.Declaration{caller}, References: []models.UnresolvedReference{
			{From: caller.ID, Name: "log", QualifiedName: "util.log", Kind: models.RefCall},
		}},
		{Path: "b.kt", Declarations: []models.Declaration{o1, o2}},
	})
	assert.True(t, g.IsReferenced(o1.ID))
	assert.True(t, g.IsReferenced(o2.ID))
}
