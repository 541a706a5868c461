package reachability

import (
	"regexp"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

var (
	synthesizedNames = map[string]bool{
		"equals":   true,
		"hashCode": true,
		"toString": true,
		"copy":     true,
	}
	componentN = regexp.MustCompile(`^component[1-9][0-9]*$`)
)

// collectCandidates partitions every unreachable declaration into Dead or
// Suppressed.
func (a *Analyzer) collectCandidates(g *graph.Graph, res *Result) {
	for i, d := range g.Declarations() {
		idx := uint32(i)
		if res.Reachable.Contains(idx) {
			continue
		}
		if reason, ok := suppress(g, res, idx); ok {
			res.Suppressed[d.ID] = reason
			continue
		}
		res.Dead = append(res.Dead, models.NewCandidate(d))
	}
}

func suppress(g *graph.Graph, res *Result, idx uint32) (SuppressReason, bool) {
	reach := res.Reachable
	d := g.At(idx)
	if d.Kind.IsPseudo() {
		return SuppressPseudo, true
	}
	parent, hasParent := g.ParentIndex(idx)
	if hasParent && !reach.Contains(parent) && !g.At(parent).Kind.IsPseudo() {
		return SuppressParentDead, true
	}
	if d.IsOverride() {
		return SuppressOverride, true
	}
	if d.IsConst() {
		return SuppressConst, true
	}
	if hasParent && g.At(parent).IsData() && d.Kind.IsFunction() &&
		(synthesizedNames[d.Name] || componentN.MatchString(d.Name)) {
		return SuppressSynthesized, true
	}
	if d.Kind == models.KindParameter && hasParent &&
		(res.Entries.Contains(parent) || boundSignature(g, parent)) {
		return SuppressSignature, true
	}
	if d.Kind == models.KindImport && g.IsReferenced(d.ID) {
		return SuppressUsedByDead, true
	}
	return "", false
}

// boundSignature reports whether a function's parameter list is fixed by
// something other than its own body. Entry points are handled by the caller.
func boundSignature(g *graph.Graph, fn uint32) bool {
	d := g.At(fn)
	if d.IsAbstract || d.IsOverride() || d.HasModifier("external") ||
		d.HasModifier("native") || d.HasModifier("expect") || d.HasModifier("actual") {
		return true
	}
	if owner, ok := g.ParentIndex(fn); ok {
		o := g.At(owner)
		if o.Kind == models.KindInterface || o.Kind == models.KindAnnotationType {
			return true
		}
		if o.IsData() && d.IsPrimaryConstructor() {
			return true
		}
	}
	return false
}

// runDeepDetectors relabels dead candidates and appends assign-only members
// of reachable containers to Dead.
func (a *Analyzer) runDeepDetectors(g *graph.Graph, res *Result) {
	for i := range res.Dead {
		c := &res.Dead[i]
		d := &c.Declaration
		idx, _ := g.Index(d.ID)

		if d.Kind.IsValueMember() && assignOnly(g, d.ID) {
			relabel(c, models.IssueAssignOnly)
			continue
		}
		if issue, ok := a.matchPatterns(g, d); ok {
			relabel(c, issue)
			continue
		}
		if memberOfReachable(g, res.Reachable, idx) && !g.IsReferenced(d.ID) && d.Kind != models.KindParameter {
			relabel(c, models.IssueUnusedMember)
		}
	}

	for i, d := range g.Declarations() {
		idx := uint32(i)
		if !res.Reachable.Contains(idx) || !d.Kind.IsValueMember() || res.Entries.Contains(idx) {
			continue
		}
		if d.IsConst() || d.IsOverride() || !memberOfReachable(g, res.Reachable, idx) {
			continue
		}
		if assignOnly(g, d.ID) {
			c := models.NewCandidate(d)
			relabel(&c, models.IssueAssignOnly)
			res.Dead = append(res.Dead, c)
		}
	}
}

func relabel(c *models.Candidate, issue models.IssueKind) {
	c.Issue = issue
	c.Message = models.DefaultMessage(issue, c.Declaration)
}

// assignOnly reports a declaration that is written but never read or
// otherwise referenced.
func assignOnly(g *graph.Graph, id models.DeclarationID) bool {
	links := g.ReferencesTo(id)
	if len(links) == 0 {
		return false
	}
	for _, l := range links {
		if !l.Reference.Kind.IsWrite() {
			return false
		}
	}
	return true
}

func memberOfReachable(g *graph.Graph, reach *graph.NodeSet, idx uint32) bool {
	p, ok := g.ParentIndex(idx)
	return ok && g.At(p).Kind.IsContainer() && reach.Contains(p)
}

func (a *Analyzer) matchPatterns(g *graph.Graph, d *models.Declaration) (models.IssueKind, bool) {
	for _, det := range a.detectors {
		if issue, ok := det.Match(g, d); ok {
			return issue, true
		}
	}
	return "", false
}
