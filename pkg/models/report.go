package models

// Report is the full result of one analysis run.
type Report struct {
	Findings []Finding    `json:"findings"`
	Cycles   *CycleReport `json:"cycles,omitempty"`
	Summary  Summary      `json:"summary"`
}

// Summary provides aggregate statistics for a report.
type Summary struct {
	FilesAnalyzed     int                `json:"files_analyzed"`
	FilesSkipped      int                `json:"files_skipped"`
	TotalDeclarations int                `json:"total_declarations"`
	Reachable         int                `json:"reachable"`
	EntryPoints       int                `json:"entry_points"`
	Suppressed        int                `json:"suppressed"`
	TotalFindings     int                `json:"total_findings"`
	RuntimeConfirmed  int                `json:"runtime_confirmed"`
	Passes            int                `json:"passes"`
	ByIssue           map[IssueKind]int  `json:"by_issue"`
	ByConfidence      map[Confidence]int `json:"by_confidence"`
	ByFile            map[string]int     `json:"by_file"`
	DeadPercentage    float64            `json:"dead_percentage"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		ByIssue:      make(map[IssueKind]int),
		ByConfidence: make(map[Confidence]int),
		ByFile:       make(map[string]int),
	}
}

// AddFinding updates the summary with a finding.
func (s *Summary) AddFinding(f *Finding) {
	s.TotalFindings++
	s.ByIssue[f.Issue]++
	s.ByConfidence[f.Confidence()]++
	s.ByFile[f.Declaration.Location.File]++
	if f.RuntimeConfirmed() {
		s.RuntimeConfirmed++
	}
}

// CalculatePercentage computes the share of declarations reported dead.
func (s *Summary) CalculatePercentage() {
	if s.TotalDeclarations > 0 {
		s.DeadPercentage = float64(s.TotalFindings) / float64(s.TotalDeclarations) * 100
	}
}
