package main

import (
	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/output"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/service/analysis"
)

func cyclesCmd() *cli.Command {
	return &cli.Command{
		Name:      "cycles",
		Usage:     "Find dead cycles and zombie pairs",
		ArgsUsage: "[path|repo[@ref]...]",
		Description: `Reports groups of unreachable declarations that only reference each other.
Markdown output includes a Mermaid diagram of each cycle.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Reachability mode: standard or deep (default from config)",
			},
		},
		Action: runCyclesCmd,
	}
}

func runCyclesCmd(c *cli.Context) error {
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

	cycles, err := newService(c, cfg).Cycles(c.Context, paths, analysis.Options{
		Mode: c.String("mode"),
	})
	if err != nil {
		return err
	}

	return formatter.Output(&output.CycleView{Report: cycles})
}
