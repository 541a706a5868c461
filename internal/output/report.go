package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// DeadCodeReport renders a full analysis report.
type DeadCodeReport struct {
	Report  *models.Report
	Version string
}

// NewDeadCodeReport wraps r for rendering.
func NewDeadCodeReport(r *models.Report, version string) *DeadCodeReport {
	return &DeadCodeReport{Report: r, Version: version}
}

type summaryData struct {
	FilesAnalyzed     int            `json:"files_analyzed"`
	FilesSkipped      int            `json:"files_skipped"`
	TotalDeclarations int            `json:"total_declarations"`
	Reachable         int            `json:"reachable"`
	EntryPoints       int            `json:"entry_points"`
	Suppressed        int            `json:"suppressed"`
	TotalFindings     int            `json:"total_findings"`
	RuntimeConfirmed  int            `json:"runtime_confirmed"`
	Passes            int            `json:"passes"`
	DeadPercentage    float64        `json:"dead_percentage"`
	ByIssue           map[string]int `json:"by_issue"`
	ByConfidence      map[string]int `json:"by_confidence"`
}

type reportData struct {
	Findings []any               `json:"findings"`
	Cycles   *models.CycleReport `json:"cycles,omitempty"`
	Summary  summaryData         `json:"summary"`
}

// RenderData returns findings flattened and summary maps keyed by string.
func (r *DeadCodeReport) RenderData() any {
	rep := r.Report
	findings := make([]any, len(rep.Findings))
	for i := range rep.Findings {
		findings[i] = rep.Findings[i].ReportData()
	}
	return reportData{
		Findings: findings,
		Cycles:   rep.Cycles,
		Summary:  flattenSummary(rep.Summary),
	}
}

func flattenSummary(s models.Summary) summaryData {
	out := summaryData{
		FilesAnalyzed:     s.FilesAnalyzed,
		FilesSkipped:      s.FilesSkipped,
		TotalDeclarations: s.TotalDeclarations,
		Reachable:         s.Reachable,
		EntryPoints:       s.EntryPoints,
		Suppressed:        s.Suppressed,
		TotalFindings:     s.TotalFindings,
		RuntimeConfirmed:  s.RuntimeConfirmed,
		Passes:            s.Passes,
		DeadPercentage:    s.DeadPercentage,
		ByIssue:           make(map[string]int, len(s.ByIssue)),
		ByConfidence:      make(map[string]int, len(s.ByConfidence)),
	}
	for k, v := range s.ByIssue {
		out.ByIssue[string(k)] = v
	}
	for k, v := range s.ByConfidence {
		out.ByConfidence[k.String()] = v
	}
	return out
}

// RenderSARIF writes the findings as SARIF.
func (r *DeadCodeReport) RenderSARIF(w io.Writer) error {
	return WriteSARIF(w, r.Report.Findings, r.Version)
}

var findingHeaders = []string{"Location", "Kind", "Name", "Issue", "Confidence", "Message"}

func findingRows(findings []models.Finding, colored bool) [][]string {
	rows := make([][]string, 0, len(findings))
	for i := range findings {
		f := &findings[i]
		conf := f.Confidence().String()
		if f.RuntimeConfirmed() {
			conf += " (runtime)"
		}
		if colored {
			conf = confidenceColor(f.Confidence()).Sprint(conf)
		}
		rows = append(rows, []string{
			location(f.Declaration.Location),
			string(f.Declaration.Kind),
			f.Declaration.DisplayName(),
			string(f.Issue),
			conf,
			f.Message,
		})
	}
	return rows
}

func confidenceColor(c models.Confidence) *color.Color {
	switch c {
	case models.ConfidenceConfirmed:
		return color.New(color.FgRed, color.Bold)
	case models.ConfidenceHigh:
		return color.New(color.FgRed)
	case models.ConfidenceMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func location(l models.Location) string {
	if l.Line == 0 {
		return l.File
	}
	return l.File + ":" + strconv.FormatUint(uint64(l.Line), 10)
}

func (r *DeadCodeReport) RenderText(w io.Writer, colored bool) error {
	rep := r.Report
	if len(rep.Findings) == 0 {
		msg := "No dead code found."
		if colored {
			msg = color.GreenString(msg)
		}
		fmt.Fprintln(w, msg)
	} else {
		t := &Table{Title: "Dead Code", Headers: findingHeaders, Rows: findingRows(rep.Findings, colored)}
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}

	if rep.Cycles != nil && (len(rep.Cycles.Cycles) > 0 || len(rep.Cycles.ZombiePairs) > 0) {
		if err := (&CycleView{Report: rep.Cycles}).RenderText(w, colored); err != nil {
			return err
		}
	}

	summary := summarySection(rep.Summary)
	return summary.RenderText(w, colored)
}

func (r *DeadCodeReport) RenderMarkdown(w io.Writer) error {
	rep := r.Report
	fmt.Fprintln(w, "# Dead Code Report")
	fmt.Fprintln(w)

	if len(rep.Findings) == 0 {
		fmt.Fprintln(w, "No dead code found.")
		fmt.Fprintln(w)
	} else {
		t := &Table{Title: "Findings", Headers: findingHeaders, Rows: findingRows(rep.Findings, false)}
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}

	if rep.Cycles != nil && (len(rep.Cycles.Cycles) > 0 || len(rep.Cycles.ZombiePairs) > 0) {
		if err := (&CycleView{Report: rep.Cycles}).RenderMarkdown(w); err != nil {
			return err
		}
	}

	summary := summarySection(rep.Summary)
	return summary.RenderMarkdown(w)
}

func summarySection(s models.Summary) *Section {
	files := strconv.Itoa(s.FilesAnalyzed)
	if s.FilesSkipped > 0 {
		files += fmt.Sprintf(" (%d skipped)", s.FilesSkipped)
	}
	sec := &Section{Title: "Summary", Fields: []Field{
		{"Files analyzed", files},
		{"Declarations", strconv.Itoa(s.TotalDeclarations)},
		{"Reachable", fmt.Sprintf("%d (%d entry points, %d passes)", s.Reachable, s.EntryPoints, s.Passes)},
		{"Findings", fmt.Sprintf("%d (%.1f%%)", s.TotalFindings, s.DeadPercentage)},
	}}
	if s.RuntimeConfirmed > 0 {
		sec.Fields = append(sec.Fields, Field{"Runtime confirmed", strconv.Itoa(s.RuntimeConfirmed)})
	}
	if s.Suppressed > 0 {
		sec.Fields = append(sec.Fields, Field{"Suppressed", strconv.Itoa(s.Suppressed)})
	}

	var parts []string
	for _, c := range []models.Confidence{
		models.ConfidenceConfirmed, models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow,
	} {
		if n := s.ByConfidence[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c, n))
		}
	}
	if len(parts) > 0 {
		sec.Fields = append(sec.Fields, Field{"By confidence", strings.Join(parts, ", ")})
	}

	issues := slices.Sorted(maps.Keys(s.ByIssue))
	parts = parts[:0]
	for _, k := range issues {
		parts = append(parts, fmt.Sprintf("%s %d", k, s.ByIssue[k]))
	}
	if len(parts) > 0 {
		sec.Fields = append(sec.Fields, Field{"By issue", strings.Join(parts, ", ")})
	}
	return sec
}

var (
	cycleHeaders  = []string{"#", "Size", "Members"}
	zombieHeaders = []string{"A", "B"}
)

// CycleView renders a dead cycle report on its own.
type CycleView struct {
	Report *models.CycleReport
}

func (v *CycleView) RenderData() any {
	return v.Report
}

func (v *CycleView) cycleRows() [][]string {
	rows := make([][]string, 0, len(v.Report.Cycles))
	for i, c := range v.Report.Cycles {
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.Itoa(c.Size), strings.Join(c.Names, " -> ")})
	}
	return rows
}

func (v *CycleView) zombieRows() [][]string {
	rows := make([][]string, 0, len(v.Report.ZombiePairs))
	for _, p := range v.Report.ZombiePairs {
		rows = append(rows, []string{p.NameA, p.NameB})
	}
	return rows
}

func (v *CycleView) RenderText(w io.Writer, colored bool) error {
	r := v.Report
	if len(r.Cycles) == 0 && len(r.ZombiePairs) == 0 {
		fmt.Fprintln(w, "No dead cycles found.")
		return nil
	}
	if len(r.Cycles) > 0 {
		t := &Table{Title: "Dead Cycles", Headers: cycleHeaders, Rows: v.cycleRows()}
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}
	if len(r.ZombiePairs) > 0 {
		t := &Table{Title: "Zombie Pairs", Headers: zombieHeaders, Rows: v.zombieRows()}
		if err := t.RenderText(w, colored); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "%d dead cycles, largest %d, %d declarations in cycles, %d zombie pairs\n\n",
		r.Stats.NumDeadCycles, r.Stats.LargestCycleSize, r.Stats.TotalDeclarationsInCycles, r.Stats.NumZombiePairs)
	return nil
}

func (v *CycleView) RenderMarkdown(w io.Writer) error {
	r := v.Report
	if len(r.Cycles) == 0 && len(r.ZombiePairs) == 0 {
		fmt.Fprintln(w, "No dead cycles found.")
		fmt.Fprintln(w)
		return nil
	}
	if len(r.Cycles) > 0 {
		t := &Table{Title: "Dead Cycles", Headers: cycleHeaders, Rows: v.cycleRows()}
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}
	if len(r.ZombiePairs) > 0 {
		t := &Table{Title: "Zombie Pairs", Headers: zombieHeaders, Rows: v.zombieRows()}
		if err := t.RenderMarkdown(w); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "```mermaid")
	fmt.Fprint(w, r.ToMermaid())
	fmt.Fprintln(w, "```")
	fmt.Fprintln(w)
	return nil
}
