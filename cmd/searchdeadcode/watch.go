package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/output"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/service/analysis"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run analysis whenever sources change",
		ArgsUsage: "[path]",
		Flags: append(analyzeFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period after the last change before re-running",
			},
		),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	svc := analysis.New(analysis.WithConfig(cfg), analysis.WithLogger(slog.Default()))
	opts := analysis.Options{
		Mode:              c.String("mode"),
		MinConfidence:     c.String("min-confidence"),
		ChangedSince:      c.String("changed-since"),
		Coverage:          c.StringSlice("coverage"),
		OptimizerUsage:    c.StringSlice("usage"),
		IncludeAdvisories: c.Bool("advisories"),
	}
	run := func(ctx context.Context) error {
		formatter, err := newFormatter(c, cfg)
		if err != nil {
			return err
		}
		defer formatter.Close()

		report, err := svc.Run(ctx, []string{root}, opts)
		if err != nil {
			return err
		}
		return formatter.Output(output.NewDeadCodeReport(report, version))
	}

	if err := run(c.Context); err != nil {
		return err
	}

	w, err := watch.New(root, cfg, watch.WithDebounce(c.Duration("debounce")), watch.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer w.Stop()

	w.SetCallback(func(changed []string) {
		color.Yellow("\n%d file(s) changed, re-analyzing", len(changed))
		if err := run(c.Context); err != nil && !errors.Is(err, context.Canceled) {
			color.Red("Error: %v", err)
		}
	})

	if err := w.Start(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
