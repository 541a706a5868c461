package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/log"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// stopProfiling is set while --pprof is active.
var stopProfiling func() error

// getPaths returns the positional arguments, or "." when there are none.
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "searchdeadcode",
		Usage:   "Find dead code in Kotlin, Java and Android projects",
		Version: version,
		Description: `searchdeadcode builds a whole-program reference graph from Kotlin and Java
sources, walks it from entry points (main functions, Android manifest
components, annotated and retained code) and reports everything it cannot
reach, graded by confidence. Coverage reports and R8/ProGuard usage files
can confirm findings at runtime.

Kotlin sources are read from parser-output documents (*.sdc.json, *.sdc.yaml).`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"SEARCHDEADCODE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, sarif (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the parse cache",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log warnings and errors; hide progress",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Write <prefix>.cpu.pprof and <prefix>.mem.pprof profiles",
			},
		}, analyzeFlags()...),
		Before: func(c *cli.Context) error {
			log.Setup(c.Bool("verbose"), c.Bool("quiet"))
			if prefix := c.String("pprof"); prefix != "" {
				stop, err := startProfiling(prefix)
				if err != nil {
					return err
				}
				stopProfiling = stop
			}
			return nil
		},
		After: func(*cli.Context) error {
			if stopProfiling == nil {
				return nil
			}
			err := stopProfiling()
			stopProfiling = nil
			return err
		},
		Action: runAnalyzeCmd,
		Commands: []*cli.Command{
			analyzeCmd(),
			cyclesCmd(),
			watchCmd(),
			initCmd(),
			configCmd(),
			mcpCmd(),
			cacheCmd(),
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
