package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Confidence is how certain a finding is. Values are totally ordered.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceConfirmed
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	case ConfidenceConfirmed:
		return "confirmed"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(b []byte) error {
	v, err := ParseConfidence(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseConfidence parses a confidence name, case-insensitively.
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	case "confirmed":
		return ConfidenceConfirmed, nil
	}
	return ConfidenceLow, fmt.Errorf("unknown confidence %q", s)
}

// IssueKind names the kind of dead code found.
type IssueKind string

const (
	IssueDeadCode         IssueKind = "dead-code"
	IssueUnusedClass      IssueKind = "unused-class"
	IssueUnusedFunction   IssueKind = "unused-function"
	IssueUnusedProperty   IssueKind = "unused-property"
	IssueUnusedParameter  IssueKind = "unused-parameter"
	IssueUnusedImport     IssueKind = "unused-import"
	IssueUnusedMember     IssueKind = "unused-member"
	IssueAssignOnly       IssueKind = "assign-only"
	IssueDebugOnly        IssueKind = "debug-only"
	IssueTestOnlyInProd   IssueKind = "test-helper-in-production"
	IssueDeprecatedUnused IssueKind = "deprecated-unused"
	IssueStub             IssueKind = "stub-implementation"
	IssueOptimizerDead    IssueKind = "optimizer-dead"
)

// IssueForKind returns the default issue kind for an unreachable declaration.
func IssueForKind(k DeclarationKind) IssueKind {
	switch {
	case k.IsContainer(), k == KindTypeAlias:
		return IssueUnusedClass
	case k.IsFunction():
		return IssueUnusedFunction
	case k.IsValueMember(), k == KindEnumEntry:
		return IssueUnusedProperty
	case k == KindParameter:
		return IssueUnusedParameter
	case k == KindImport:
		return IssueUnusedImport
	}
	return IssueDeadCode
}

// Severity is the reporting severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityFor derives severity from the issue kind.
func SeverityFor(issue IssueKind) Severity {
	switch issue {
	case IssueUnusedImport, IssueUnusedParameter, IssueDebugOnly, IssueStub:
		return SeverityInfo
	case IssueUnusedClass, IssueOptimizerDead:
		return SeverityError
	}
	return SeverityWarning
}

// Candidate is a statically unreachable declaration before grading.
type Candidate struct {
	Declaration Declaration `json:"declaration"`
	Issue       IssueKind   `json:"issue"`
	Message     string      `json:"message"`
}

// NewCandidate builds a candidate with the default issue for its kind.
func NewCandidate(d Declaration) Candidate {
	issue := IssueForKind(d.Kind)
	return Candidate{Declaration: d, Issue: issue, Message: DefaultMessage(issue, d)}
}

// DefaultMessage renders the standard message for an issue.
func DefaultMessage(issue IssueKind, d Declaration) string {
	switch issue {
	case IssueUnusedImport:
		return fmt.Sprintf("Import '%s' is never used", d.Name)
	case IssueUnusedParameter:
		return fmt.Sprintf("Parameter '%s' is never used", d.Name)
	case IssueAssignOnly:
		return fmt.Sprintf("Property '%s' is assigned but never read", d.Name)
	case IssueUnusedMember:
		return fmt.Sprintf("Member '%s' is never referenced", d.Name)
	case IssueOptimizerDead:
		return fmt.Sprintf("'%s' was removed by the optimizer", d.DisplayName())
	case IssueDebugOnly:
		return fmt.Sprintf("'%s' looks like debug-only code and is unreachable", d.Name)
	case IssueTestOnlyInProd:
		return fmt.Sprintf("Test helper '%s' lives in production sources and is unreachable", d.Name)
	case IssueDeprecatedUnused:
		return fmt.Sprintf("'%s' is deprecated and unreferenced", d.Name)
	case IssueStub:
		return fmt.Sprintf("'%s' looks like a stub implementation and is unreachable", d.Name)
	}
	return fmt.Sprintf("%s '%s' is never used", kindLabel(d.Kind), d.Name)
}

func kindLabel(k DeclarationKind) string {
	s := strings.ReplaceAll(string(k), "_", " ")
	if s == "" {
		return "Declaration"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Finding is a graded dead-code report.
// A runtime-confirmed finding always carries ConfidenceConfirmed.
type Finding struct {
	Declaration      Declaration
	Issue            IssueKind
	Severity         Severity
	Message          string
	confidence       Confidence
	runtimeConfirmed bool
}

// NewFinding creates a finding from a candidate.
func NewFinding(c Candidate, conf Confidence) Finding {
	return Finding{
		Declaration: c.Declaration,
		Issue:       c.Issue,
		Severity:    SeverityFor(c.Issue),
		Message:     c.Message,
		confidence:  conf,
	}
}

// Confidence returns the graded confidence.
func (f *Finding) Confidence() Confidence {
	return f.confidence
}

// RuntimeConfirmed reports whether coverage proved the code never ran.
func (f *Finding) RuntimeConfirmed() bool {
	return f.runtimeConfirmed
}

// SetConfidence updates the confidence. It is ignored once runtime-confirmed.
func (f *Finding) SetConfidence(c Confidence) {
	if f.runtimeConfirmed {
		return
	}
	f.confidence = c
}

// MarkRuntimeConfirmed sets the sticky runtime flag and raises confidence to Confirmed.
func (f *Finding) MarkRuntimeConfirmed() {
	f.runtimeConfirmed = true
	f.confidence = ConfidenceConfirmed
}

// Fingerprint is a stable hash of the finding's identity, independent of line shifts.
func (f *Finding) Fingerprint() string {
	key := strings.Join([]string{
		f.Declaration.Location.File,
		string(f.Declaration.Kind),
		f.Declaration.DisplayName(),
		string(f.Issue),
	}, "\x00")
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

type findingJSON struct {
	Name             string          `json:"name"`
	FQN              string          `json:"fqn,omitempty"`
	Kind             DeclarationKind `json:"kind"`
	Visibility       Visibility      `json:"visibility"`
	File             string          `json:"file"`
	Line             uint32          `json:"line"`
	Column           uint32          `json:"column"`
	Issue            IssueKind       `json:"issue"`
	Severity         Severity        `json:"severity"`
	Confidence       Confidence      `json:"confidence"`
	RuntimeConfirmed bool            `json:"runtime_confirmed"`
	Message          string          `json:"message"`
	Fingerprint      string          `json:"fingerprint"`
}

// MarshalJSON flattens the finding for reports.
func (f Finding) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.flat())
}

// ReportData returns the flat form used by JSON and TOON renderers.
func (f *Finding) ReportData() any {
	return f.flat()
}

func (f *Finding) flat() findingJSON {
	d := f.Declaration
	return findingJSON{
		Name:             d.Name,
		FQN:              d.FullyQualifiedName,
		Kind:             d.Kind,
		Visibility:       d.Visibility,
		File:             d.Location.File,
		Line:             d.Location.Line,
		Column:           d.Location.Column,
		Issue:            f.Issue,
		Severity:         f.Severity,
		Confidence:       f.confidence,
		RuntimeConfirmed: f.runtimeConfirmed,
		Message:          f.Message,
		Fingerprint:      f.Fingerprint(),
	}
}

// CompareFindings orders findings by file, line, column, then name.
func CompareFindings(a, b Finding) int {
	la, lb := a.Declaration.Location, b.Declaration.Location
	if c := strings.Compare(la.File, lb.File); c != 0 {
		return c
	}
	if la.Line != lb.Line {
		if la.Line < lb.Line {
			return -1
		}
		return 1
	}
	if la.Column != lb.Column {
		if la.Column < lb.Column {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Declaration.Name, b.Declaration.Name)
}
