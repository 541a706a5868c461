// Package confidence grades dead-code candidates by reconciling the static
// result with runtime coverage and optimizer usage reports.
package confidence

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// CoverageState is the tri-state answer of a coverage oracle, plus partial.
type CoverageState int

const (
	CoverageUnknown CoverageState = iota
	CoverageCovered
	CoverageUncovered
	CoveragePartial
)

func (s CoverageState) String() string {
	switch s {
	case CoverageCovered:
		return "covered"
	case CoverageUncovered:
		return "uncovered"
	case CoveragePartial:
		return "partial"
	}
	return "unknown"
}

// Coverage answers whether code ran.
type Coverage interface {
	LineState(file string, line uint32) CoverageState
	MethodState(class, method string) CoverageState
	ClassState(class string) CoverageState
}

// Optimizer answers what a whole-program optimizer removed.
//
// Boost returns 1 when the optimizer proved the member dead, or the whole
// class dead when member is empty, and a value in (0,1) for weaker evidence.
type Optimizer interface {
	Boost(class, member string) float64
	DeadClasses() []string
	DeadMembers() map[string][]string
}

// Engine grades candidates.
type Engine struct {
	coverage  Coverage
	optimizer Optimizer
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCoverage sets the coverage oracle.
func WithCoverage(c Coverage) Option {
	return func(e *Engine) {
		e.coverage = c
	}
}

// WithOptimizer sets the optimizer oracle.
func WithOptimizer(o Optimizer) Option {
	return func(e *Engine) {
		e.optimizer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. Without oracles it grades on static evidence only.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grade assigns a confidence to every candidate, appends optimizer-only
// findings and returns the result ordered by file and line.
func (e *Engine) Grade(g *graph.Graph, candidates []models.Candidate) []models.Finding {
	findings := make([]models.Finding, 0, len(candidates))
	present := make(map[models.DeclarationID]bool, len(candidates))
	for _, c := range candidates {
		findings = append(findings, e.grade(g, c))
		present[c.Declaration.ID] = true
	}

	if e.optimizer != nil {
		extra := e.augment(g, present)
		if len(extra) > 0 {
			e.logger.Debug("optimizer-only findings", "count", len(extra))
		}
		findings = append(findings, extra...)
	}

	slices.SortStableFunc(findings, models.CompareFindings)
	return findings
}

func (e *Engine) grade(g *graph.Graph, c models.Candidate) models.Finding {
	d := &c.Declaration
	class, member := names(g, d)

	if e.optimizer != nil && class != "" {
		// 1. Whole enclosing class removed.
		if e.optimizer.Boost(class, "") >= 1 {
			return models.NewFinding(c, models.ConfidenceConfirmed)
		}
		// 2. This member removed.
		if member != "" && e.optimizer.Boost(class, member) >= 1 {
			return models.NewFinding(c, models.ConfidenceConfirmed)
		}
	}

	if e.coverage != nil {
		switch e.coverageState(class, member, d) {
		case CoverageUncovered:
			f := models.NewFinding(c, models.ConfidenceConfirmed)
			f.MarkRuntimeConfirmed()
			return f
		case CoverageCovered:
			// Executed despite being statically unreachable: likely reflection
			// or dispatch the graph cannot see.
			return models.NewFinding(c, models.ConfidenceLow)
		case CoveragePartial:
			return models.NewFinding(c, models.ConfidenceMedium)
		}
	}

	f := models.NewFinding(c, staticConfidence(d))
	if e.optimizer != nil && class != "" && f.Confidence() == models.ConfidenceMedium {
		if e.optimizer.Boost(class, member) >= 0.5 {
			f.SetConfidence(models.ConfidenceHigh)
		}
	}
	return f
}

func (e *Engine) coverageState(class, member string, d *models.Declaration) CoverageState {
	state := CoverageUnknown
	switch {
	case d.Kind.IsContainer():
		state = e.coverage.ClassState(d.DisplayName())
	case d.Kind.IsFunction() && class != "":
		state = e.coverage.MethodState(class, member)
	}
	if state == CoverageUnknown && d.Location.Line > 0 {
		state = e.coverage.LineState(d.Location.File, d.Location.Line)
	}
	return state
}

// staticConfidence grades on declaration shape alone.
func staticConfidence(d *models.Declaration) models.Confidence {
	switch d.Kind {
	case models.KindParameter, models.KindImport:
		return models.ConfidenceHigh
	}
	switch d.Visibility {
	case models.VisibilityPrivate:
		return models.ConfidenceHigh
	case models.VisibilityInternal, models.VisibilityProtected:
		return models.ConfidenceMedium
	}
	// Public surface may be used outside the analyzed sources.
	return models.ConfidenceMedium
}

// names returns the oracle lookup key for d: the enclosing class name and the
// member name. For a container, member is empty.
func names(g *graph.Graph, d *models.Declaration) (string, string) {
	if d.Kind.IsContainer() {
		return d.DisplayName(), ""
	}
	for p := d.Parent; p != nil; {
		pd := g.Declaration(*p)
		if pd == nil {
			break
		}
		if pd.Kind.IsContainer() {
			member := d.Name
			if d.Kind == models.KindConstructor {
				member = "<init>"
			}
			return pd.DisplayName(), member
		}
		p = pd.Parent
	}
	return "", d.Name
}

// augment turns optimizer-dead classes and members that exist in the graph
// but were not static candidates into confirmed findings.
func (e *Engine) augment(g *graph.Graph, present map[models.DeclarationID]bool) []models.Finding {
	var out []models.Finding
	add := func(d *models.Declaration) {
		if present[d.ID] {
			return
		}
		present[d.ID] = true
		c := models.Candidate{Declaration: *d, Issue: models.IssueOptimizerDead}
		c.Message = models.DefaultMessage(c.Issue, c.Declaration)
		out = append(out, models.NewFinding(c, models.ConfidenceConfirmed))
	}

	for _, class := range e.optimizer.DeadClasses() {
		if id, ok := g.ByFQN(class); ok {
			add(g.Declaration(id))
		}
	}
	for class, members := range e.optimizer.DeadMembers() {
		id, ok := g.ByFQN(class)
		if !ok {
			continue
		}
		children := g.Children(id)
		for _, m := range members {
			for _, child := range children {
				cd := g.Declaration(child)
				if MemberMatches(cd, m) {
					add(cd)
				}
			}
		}
	}
	return out
}

// MemberMatches reports whether an optimizer member name refers to d,
// accounting for JVM accessor and constructor naming.
func MemberMatches(d *models.Declaration, member string) bool {
	if d.Kind == models.KindConstructor {
		return member == "<init>"
	}
	if d.Name == member {
		return true
	}
	if !d.Kind.IsValueMember() || d.Name == "" {
		return false
	}
	upper := strings.ToUpper(d.Name[:1]) + d.Name[1:]
	return member == "get"+upper || member == "set"+upper || member == "is"+upper
}
