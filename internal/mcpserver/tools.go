package mcpserver

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/output"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/service/analysis"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
)

// AnalyzeInput is the base input for all tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Source roots or files to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	Mode   string   `json:"mode,omitempty" jsonschema:"Reachability mode: standard (default) or deep. Deep also reports unused members of reachable classes."`
}

// DeadCodeInput adds grading and filtering options.
type DeadCodeInput struct {
	AnalyzeInput
	MinConfidence     string   `json:"min_confidence,omitempty" jsonschema:"Lowest confidence to report: low, medium, high, or confirmed. Default from config (low)."`
	ChangedSince      string   `json:"changed_since,omitempty" jsonschema:"Git revision; only report findings in files changed since it (committed, staged or untracked)."`
	Coverage          []string `json:"coverage,omitempty" jsonschema:"Coverage reports (JaCoCo or Kover XML) used to confirm findings at runtime."`
	OptimizerUsage    []string `json:"optimizer_usage,omitempty" jsonschema:"R8/ProGuard usage.txt files listing code removed by the optimizer."`
	IncludeAdvisories bool     `json:"include_advisories,omitempty" jsonschema:"Deep mode only: label dead code matched by name and path heuristics as debug-only, test-helper, deprecated-unused or stub. Assign-only members are always reported in deep mode."`
}

// CyclesInput selects paths for dead cycle detection.
type CyclesInput struct {
	AnalyzeInput
}

// loadConfig is swapped in tests to avoid touching the working directory.
var loadConfig = func() *config.Config {
	if path := os.Getenv(configEnv); path != "" {
		if cfg, err := config.Load(path); err == nil {
			return cfg
		}
	}
	return config.LoadOrDefault()
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

// getFormat defaults to TOON, which is compact for model context.
func getFormat(input AnalyzeInput) output.Format {
	switch f := output.ParseFormat(input.Format); f {
	case output.FormatJSON, output.FormatMarkdown:
		return f
	default:
		return output.FormatTOON
	}
}

// toolResult renders data as the single text content of a tool result.
// Markdown wraps TOON in a fence.
func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	var text string
	if format == output.FormatJSON {
		var sb strings.Builder
		if err := output.WriteJSON(&sb, data); err != nil {
			return nil, nil, err
		}
		text = strings.TrimSuffix(sb.String(), "\n")
	} else {
		out, err := output.MarshalTOON(data)
		if err != nil {
			return nil, nil, err
		}
		text = string(out)
		if format == output.FormatMarkdown {
			text = "```\n" + text + "\n```"
		}
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func newService() *analysis.Service {
	return analysis.New(analysis.WithConfig(loadConfig()))
}

func handleFindDeadCode(ctx context.Context, req *mcp.CallToolRequest, input DeadCodeInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	report, err := newService().Run(ctx, paths, analysis.Options{
		Mode:              input.Mode,
		MinConfidence:     input.MinConfidence,
		ChangedSince:      input.ChangedSince,
		Coverage:          input.Coverage,
		OptimizerUsage:    input.OptimizerUsage,
		IncludeAdvisories: input.IncludeAdvisories,
	})
	if err != nil {
		return toolError(err.Error())
	}
	if report.Summary.FilesAnalyzed == 0 {
		return toolError("no Kotlin or Java sources found")
	}

	return toolResult(output.NewDeadCodeReport(report, "").RenderData(), format)
}

func handleFindDeadCycles(ctx context.Context, req *mcp.CallToolRequest, input CyclesInput) (*mcp.CallToolResult, any, error) {
	paths := getPaths(input.AnalyzeInput)
	format := getFormat(input.AnalyzeInput)

	cycles, err := newService().Cycles(ctx, paths, analysis.Options{Mode: input.Mode})
	if err != nil {
		return toolError(err.Error())
	}
	if cycles == nil {
		return toolError(fmt.Sprintf("cycle detection produced no report for %v", paths))
	}

	return toolResult(cycles, format)
}
