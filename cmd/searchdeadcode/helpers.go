package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/output"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/remote"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/service/analysis"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
)

// loadConfig loads --config, or the first config file found, or the
// defaults, then applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	res, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if res.Source != "" {
		slog.Debug("loaded config", "path", res.Source)
	}

	cfg := res.Config
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// newFormatter uses --format when given, else the configured format.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	name := cfg.Output.Format
	if c.IsSet("format") {
		name = c.String("format")
	}
	if !output.ValidFormat(name) {
		return nil, fmt.Errorf("%w: %q", output.ErrUnsupportedFormat, name)
	}
	return output.NewFormatter(output.ParseFormat(name), c.String("output"), cfg.Output.Color && !color.NoColor)
}

func newService(c *cli.Context, cfg *config.Config) *analysis.Service {
	return analysis.New(
		analysis.WithConfig(cfg),
		analysis.WithLogger(slog.Default()),
		analysis.WithProgress(!c.Bool("quiet")),
	)
}

// resolvePaths clones any remote repository arguments and returns paths to
// analyze. The returned cleanup removes the clones.
func resolvePaths(c *cli.Context) ([]string, func(), error) {
	var sources []*remote.Source
	cleanup := func() {
		for _, src := range sources {
			if err := src.Cleanup(); err != nil {
				slog.Warn("cannot remove clone", "url", src.URL, "error", err)
			}
		}
	}

	var progress io.Writer = os.Stderr
	if c.Bool("quiet") {
		progress = nil
	}
	// History is needed to diff against --changed-since.
	shallow := c.String("changed-since") == ""

	paths := getPaths(c)
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		src, err := remote.Parse(path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if src == nil {
			resolved = append(resolved, path)
			continue
		}
		slog.Info("cloning", "url", src.URL, "ref", src.Ref)
		if err := src.Clone(c.Context, progress, shallow); err != nil {
			cleanup()
			return nil, nil, err
		}
		sources = append(sources, src)
		resolved = append(resolved, src.CloneDir)
	}
	return resolved, cleanup, nil
}
