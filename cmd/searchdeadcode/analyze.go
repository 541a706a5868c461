package main

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/output"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/service/analysis"
)

func analyzeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Reachability mode: standard or deep (default from config)",
		},
		&cli.StringFlag{
			Name:  "min-confidence",
			Usage: "Lowest confidence to report: low, medium, high, confirmed",
		},
		&cli.StringFlag{
			Name:  "changed-since",
			Usage: "Only report findings in files changed since this git revision",
		},
		&cli.StringSliceFlag{
			Name:  "coverage",
			Usage: "Coverage report (JaCoCo or Kover XML); repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "usage",
			Usage: "R8/ProGuard usage.txt; repeatable",
		},
		&cli.BoolFlag{
			Name:  "advisories",
			Usage: "Deep mode: label dead code as debug-only, test-helper, deprecated-unused or stub by name and path heuristics",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Find unreachable declarations (default command)",
		ArgsUsage: "[path|repo[@ref]...]",
		Description: `Examples:
  searchdeadcode analyze app/src
  searchdeadcode analyze --mode deep --coverage build/reports/jacoco.xml .
  searchdeadcode analyze --changed-since main -f sarif -o dead.sarif
  searchdeadcode analyze square/okhttp@parent-4.12.0`,
		Flags:  analyzeFlags(),
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	paths, cleanup, err := resolvePaths(c)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := newService(c, cfg).Run(c.Context, paths, analysis.Options{
		Mode:              c.String("mode"),
		MinConfidence:     c.String("min-confidence"),
		ChangedSince:      c.String("changed-since"),
		Coverage:          c.StringSlice("coverage"),
		OptimizerUsage:    c.StringSlice("usage"),
		IncludeAdvisories: c.Bool("advisories"),
	})
	if err != nil {
		return err
	}

	if report.Summary.FilesAnalyzed == 0 {
		color.Yellow("No Kotlin or Java sources found")
		return nil
	}
	if n := report.Summary.FilesSkipped; n > 0 {
		slog.Warn("some files were skipped", "count", n)
	}

	return formatter.Output(output.NewDeadCodeReport(report, version))
}
