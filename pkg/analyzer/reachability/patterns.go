package reachability

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// Detector is a name or path heuristic applied to dead candidates in deep
// mode. Detectors only relabel; they never change reachability.
type Detector interface {
	Match(g *graph.Graph, d *models.Declaration) (models.IssueKind, bool)
}

// DefaultDetectors returns the built-in detectors, highest priority first.
func DefaultDetectors() []Detector {
	return []Detector{
		DeprecatedDetector{},
		TestHelperDetector{},
		DebugDetector{},
		StubDetector{},
	}
}

// DeprecatedDetector flags deprecated declarations nothing references.
type DeprecatedDetector struct{}

func (DeprecatedDetector) Match(g *graph.Graph, d *models.Declaration) (models.IssueKind, bool) {
	if d.IsDeprecated() && !g.IsReferenced(d.ID) {
		return models.IssueDeprecatedUnused, true
	}
	return "", false
}

var (
	testHelperName = regexp.MustCompile(`^(Mock|Fake|Stub|Dummy|Test)[A-Z_]|(ForTest|ForTesting|TestHelper|TestUtils?|Fixture)$`)
	debugName      = regexp.MustCompile(`^(debug|dump|trace)[A-Z_]|Debug$|ForDebug`)
)

// TestHelperDetector flags test-support code living in production sources.
type TestHelperDetector struct{}

func (TestHelperDetector) Match(_ *graph.Graph, d *models.Declaration) (models.IssueKind, bool) {
	if isTestPath(d.Location.File) {
		return "", false
	}
	if testHelperName.MatchString(d.Name) || d.HasAnnotation("VisibleForTesting") {
		return models.IssueTestOnlyInProd, true
	}
	return "", false
}

func isTestPath(path string) bool {
	p := "/" + filepath.ToSlash(path)
	for _, dir := range []string{"/test/", "/tests/", "/androidTest/", "/testFixtures/", "/sharedTest/"} {
		if strings.Contains(p, dir) {
			return true
		}
	}
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), "Test")
}

// DebugDetector flags code that only exists for debugging.
type DebugDetector struct{}

func (DebugDetector) Match(_ *graph.Graph, d *models.Declaration) (models.IssueKind, bool) {
	if debugName.MatchString(d.Name) || strings.Contains(filepath.ToSlash(d.Location.File), "/debug/") {
		return models.IssueDebugOnly, true
	}
	return "", false
}

// StubDetector flags functions the front-end marked as having a stub body
// (empty, TODO() or an unconditional throw).
type StubDetector struct{}

func (StubDetector) Match(_ *graph.Graph, d *models.Declaration) (models.IssueKind, bool) {
	if d.Kind.IsFunction() && d.HasModifier("stub") {
		return models.IssueStub, true
	}
	return "", false
}
