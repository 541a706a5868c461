package reachability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/analyzer/confidence"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// fixture builds small graphs by name.
type fixture struct {
	g    *graph.Graph
	ids  map[string]models.DeclarationID
	next uint32
}

func newFixture() *fixture {
	return &fixture{g: graph.New(), ids: make(map[string]models.DeclarationID)}
}

func (f *fixture) add(name string, kind models.DeclarationKind, parent string, modifiers ...string) models.DeclarationID {
	return f.addDecl(models.Declaration{Name: name, Kind: kind, Modifiers: modifiers}, parent)
}

func (f *fixture) addDecl(d models.Declaration, parent string) models.DeclarationID {
	f.next += 10
	d.ID = models.NewDeclarationID("src/main/App.kt", f.next, f.next+5)
	d.Location = models.Location{File: "src/main/App.kt", Line: f.next / 10}
	if d.Visibility == "" {
		d.Visibility = models.VisibilityPublic
	}
	if parent != "" {
		p := f.ids[parent]
		d.Parent = &p
	}
	f.ids[d.Name] = f.g.AddDeclaration(d)
	return d.ID
}

func (f *fixture) ref(from, to string, kind models.ReferenceKind) {
	f.g.AddReference(f.ids[from], f.ids[to], models.Reference{Kind: kind, Name: to})
}

func (f *fixture) entries(names ...string) []models.DeclarationID {
	ids := make([]models.DeclarationID, len(names))
	for i, n := range names {
		ids[i] = f.ids[n]
	}
	return ids
}

func (f *fixture) run(t *testing.T, mode Mode, entries ...string) *Result {
	t.Helper()
	res, err := New(WithMode(mode), WithWorkers(2)).Analyze(context.Background(), f.g, f.entries(entries...))
	require.NoError(t, err)
	return res
}

func deadNames(res *Result) []string {
	var names []string
	for _, c := range res.Dead {
		names = append(names, c.Declaration.Name)
	}
	return names
}

func deadIssue(res *Result, name string) models.IssueKind {
	for _, c := range res.Dead {
		if c.Declaration.Name == name {
			return c.Issue
		}
	}
	return ""
}

func TestAnalyze_ReachableCycle(t *testing.T) {
	f := newFixture()
	f.add("E", models.KindFunction, "")
	f.add("A", models.KindFunction, "")
	f.add("B", models.KindFunction, "")
	f.ref("E", "A", models.RefCall)
	f.ref("A", "B", models.RefCall)
	f.ref("B", "A", models.RefCall)

	for _, mode := range []Mode{ModeStandard, ModeDeep} {
		t.Run(string(mode), func(t *testing.T) {
			res := f.run(t, mode, "E")
			assert.ElementsMatch(t, f.entries("E", "A", "B"), res.ReachableIDs())
			assert.Empty(t, res.Dead)
		})
	}
}

func TestAnalyze_NoEntries(t *testing.T) {
	f := newFixture()
	f.add("A", models.KindFunction, "")
	f.add("B", models.KindFunction, "")
	f.ref("A", "B", models.RefCall)
	f.ref("B", "A", models.RefCall)

	res := f.run(t, ModeStandard)
	assert.Zero(t, res.Reachable.Len())
	assert.ElementsMatch(t, []string{"A", "B"}, deadNames(res))
	assert.Zero(t, res.Passes)
}

func TestAnalyze_SealedSubclasses(t *testing.T) {
	f := newFixture()
	f.add("E", models.KindFunction, "")
	f.add("S", models.KindClass, "", "sealed")
	f.add("X", models.KindClass, "")
	f.add("Y", models.KindClass, "")
	f.add("Z", models.KindClass, "")
	f.ref("E", "S", models.RefType)
	f.ref("X", "S", models.RefInheritance)
	f.ref("Y", "S", models.RefInheritance)

	for _, mode := range []Mode{ModeStandard, ModeDeep} {
		t.Run(string(mode), func(t *testing.T) {
			res := f.run(t, mode, "E")
			for _, name := range []string{"E", "S", "X", "Y"} {
				assert.True(t, res.IsReachable(f.ids[name]), name)
			}
			assert.False(t, res.IsReachable(f.ids["Z"]))
			assert.Equal(t, []string{"Z"}, deadNames(res))
		})
	}
}

func TestAnalyze_AssignOnlyProperty(t *testing.T) {
	f := newFixture()
	f.add("Holder", models.KindClass, "")
	f.add("update", models.KindMethod, "Holder")
	f.addDecl(models.Declaration{Name: "cache", Kind: models.KindProperty, Visibility: models.VisibilityPrivate}, "Holder")
	f.ref("update", "cache", models.RefWrite)

	res := f.run(t, ModeDeep, "update")
	require.Len(t, res.Dead, 1)
	assert.Equal(t, "cache", res.Dead[0].Declaration.Name)
	assert.Equal(t, models.IssueAssignOnly, res.Dead[0].Issue)

	findings := confidence.New().Grade(f.g, res.Dead)
	require.Len(t, findings, 1)
	assert.Equal(t, models.IssueAssignOnly, findings[0].Issue)
	assert.Equal(t, models.ConfidenceHigh, findings[0].Confidence())

	std := f.run(t, ModeStandard, "update")
	assert.Empty(t, std.Dead)
}

func TestAnalyze_EntryPointParameters(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "", "static")
	f.add("args", models.KindParameter, "main")
	f.add("helper", models.KindFunction, "")
	f.add("unused", models.KindParameter, "helper")
	f.ref("main", "helper", models.RefCall)

	for _, mode := range []Mode{ModeStandard, ModeDeep} {
		t.Run(string(mode), func(t *testing.T) {
			res := f.run(t, mode, "main")
			assert.Equal(t, SuppressSignature, res.Suppressed[f.ids["args"]])
			assert.Equal(t, []string{"unused"}, deadNames(res))
			assert.Equal(t, 1, res.Entries.Len())
		})
	}
}

func TestAnalyze_AssignOnlyDeadCandidate(t *testing.T) {
	f := newFixture()
	f.add("Holder", models.KindClass, "")
	f.add("main", models.KindFunction, "")
	f.add("flag", models.KindProperty, "Holder")
	f.add("reset", models.KindMethod, "Holder")
	f.ref("main", "Holder", models.RefType)
	f.ref("reset", "flag", models.RefWrite)

	res := f.run(t, ModeDeep, "main")
	assert.Equal(t, models.IssueAssignOnly, deadIssue(res, "flag"))
	assert.Equal(t, models.IssueUnusedMember, deadIssue(res, "reset"))
}

func TestAnalyze_StandardVsDeepMembers(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("Service", models.KindClass, "")
	f.add("used", models.KindMethod, "Service")
	f.add("unused", models.KindMethod, "Service")
	f.add("Nested", models.KindClass, "Service")
	f.add("inner", models.KindMethod, "Nested")
	f.ref("main", "used", models.RefCall)

	std := f.run(t, ModeStandard, "main")
	assert.Empty(t, std.Dead)
	assert.True(t, std.IsReachable(f.ids["inner"]), "nested members follow the worklist")

	deep := f.run(t, ModeDeep, "main")
	assert.ElementsMatch(t, []string{"unused", "Nested"}, deadNames(deep))
	assert.Equal(t, models.IssueUnusedMember, deadIssue(deep, "unused"))
	assert.Equal(t, SuppressParentDead, deep.Suppressed[f.ids["inner"]])

	// Deep mode never reaches more than standard mode.
	for _, id := range deep.ReachableIDs() {
		assert.True(t, std.IsReachable(id))
	}
}

func TestAnalyze_DeepModeRules(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("Screen", models.KindClass, "")
	f.add("onCreate", models.KindMethod, "Screen", "override")
	f.add("Screen.<init>", models.KindConstructor, "Screen", "primary")
	f.add("Companion", models.KindObject, "Screen", "companion")
	f.add("serialVersionUID", models.KindField, "Screen")
	f.addDecl(models.Declaration{Name: "userName", Kind: models.KindProperty, Annotations: []string{"SerializedName(\"user\")"}}, "Screen")
	f.add("helper", models.KindMethod, "Screen")
	f.ref("main", "Screen", models.RefInstantiation)

	res := f.run(t, ModeDeep, "main")
	for _, name := range []string{"onCreate", "Screen.<init>", "Companion", "serialVersionUID", "userName"} {
		assert.True(t, res.IsReachable(f.ids[name]), name)
	}
	assert.Equal(t, []string{"helper"}, deadNames(res))
}

func TestAnalyze_PrimaryConstructorNeedsConstruction(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("Config", models.KindClass, "")
	f.add("Config.<init>", models.KindConstructor, "Config", "primary")
	f.ref("main", "Config", models.RefType)

	res := f.run(t, ModeDeep, "main")
	assert.Equal(t, []string{"Config.<init>"}, deadNames(res))
}

func TestAnalyze_InterfaceImplementation(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("Listener", models.KindInterface, "")
	f.add("ClickListener", models.KindClass, "")
	f.add("onClick", models.KindMethod, "ClickListener", "override")
	f.add("Unrelated", models.KindClass, "")
	f.ref("main", "Listener", models.RefType)
	f.ref("ClickListener", "Listener", models.RefInheritance)

	res := f.run(t, ModeDeep, "main")
	assert.True(t, res.IsReachable(f.ids["ClickListener"]))
	assert.True(t, res.IsReachable(f.ids["onClick"]), "override reached on the next pass")
	assert.Equal(t, []string{"Unrelated"}, deadNames(res))
	assert.GreaterOrEqual(t, res.Passes, 2)
}

func TestAnalyze_Suppression(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("app", models.KindFile, "")
	f.add("Point", models.KindClass, "app", "data")
	f.add("component1", models.KindMethod, "Point")
	f.add("copy", models.KindMethod, "Point")
	f.add("MAX", models.KindProperty, "app", "const")
	f.add("render", models.KindMethod, "Point", "override")
	f.add("Shape", models.KindInterface, "")
	f.add("area", models.KindMethod, "Shape")
	f.add("scale", models.KindParameter, "area")
	f.add("Orphan", models.KindClass, "app")
	f.add("orphanMethod", models.KindMethod, "Orphan")
	f.add("util", models.KindFile, "")
	f.ref("main", "Point", models.RefInstantiation)
	f.ref("main", "Shape", models.RefType)
	f.ref("main", "area", models.RefCall)

	res := f.run(t, ModeDeep, "main")
	assert.True(t, res.IsReachable(f.ids["app"]), "ancestor of a reachable class")
	assert.Equal(t, SuppressPseudo, res.Suppressed[f.ids["util"]])
	assert.Equal(t, SuppressSynthesized, res.Suppressed[f.ids["component1"]])
	assert.Equal(t, SuppressSynthesized, res.Suppressed[f.ids["copy"]])
	assert.Equal(t, SuppressConst, res.Suppressed[f.ids["MAX"]])
	assert.Equal(t, SuppressSignature, res.Suppressed[f.ids["scale"]])
	assert.Equal(t, SuppressParentDead, res.Suppressed[f.ids["orphanMethod"]])
	assert.True(t, res.IsReachable(f.ids["render"]))
	assert.Equal(t, []string{"Orphan"}, deadNames(res))
}

func TestAnalyze_UnusedParameterOfConcreteFunction(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("format", models.KindFunction, "")
	f.add("value", models.KindParameter, "format")
	f.add("unused", models.KindParameter, "format")
	f.ref("main", "format", models.RefCall)
	f.ref("format", "value", models.RefRead)

	res := f.run(t, ModeStandard, "main")
	assert.Equal(t, []string{"unused"}, deadNames(res))
	assert.Equal(t, models.IssueUnusedParameter, deadIssue(res, "unused"))
}

func TestAnalyze_PatternDetectors(t *testing.T) {
	f := newFixture()
	f.add("main", models.KindFunction, "")
	f.add("debugDumpState", models.KindFunction, "")
	f.addDecl(models.Declaration{Name: "legacyFormat", Kind: models.KindFunction, Annotations: []string{"Deprecated"}}, "")
	f.add("FakeRepository", models.KindClass, "")
	f.add("notImplemented", models.KindFunction, "", "stub")
	f.add("plain", models.KindFunction, "")

	res := f.run(t, ModeDeep, "main")
	assert.Equal(t, models.IssueDebugOnly, deadIssue(res, "debugDumpState"))
	assert.Equal(t, models.IssueDeprecatedUnused, deadIssue(res, "legacyFormat"))
	assert.Equal(t, models.IssueTestOnlyInProd, deadIssue(res, "FakeRepository"))
	assert.Equal(t, models.IssueStub, deadIssue(res, "notImplemented"))
	assert.Equal(t, models.IssueUnusedFunction, deadIssue(res, "plain"))

	std := f.run(t, ModeStandard, "main")
	assert.Equal(t, models.IssueUnusedFunction, deadIssue(std, "debugDumpState"))
}

func TestAnalyze_MissingEntryIgnored(t *testing.T) {
	f := newFixture()
	f.add("A", models.KindFunction, "")
	missing := models.NewDeclarationID("gone.kt", 1, 2)

	res, err := New().Analyze(context.Background(), f.g, []models.DeclarationID{missing})
	require.NoError(t, err)
	assert.Zero(t, res.EntryPoints)
	assert.Equal(t, []string{"A"}, deadNames(res))
}

func TestAnalyze_CancelledContext(t *testing.T) {
	f := newFixture()
	f.add("A", models.KindFunction, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Analyze(ctx, f.g, f.entries("A"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStandard, m)

	m, err = ParseMode("DEEP")
	require.NoError(t, err)
	assert.Equal(t, ModeDeep, m)

	_, err = ParseMode("aggressive")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
