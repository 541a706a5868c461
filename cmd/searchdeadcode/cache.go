package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/cache"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/frontend"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the parse cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache size",
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached parse results",
				Action: runCacheClearCmd,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	pc, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true, cache.WithVersion(frontend.Version))
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return pc, cfg, nil
}

func runCacheStatsCmd(c *cli.Context) error {
	pc, cfg, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := pc.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Directory: %s\nEntries:   %d\nSize:      %d bytes\n", cfg.Cache.Dir, stats.Entries, stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(c.App.Writer, "Oldest:    %s\n", stats.OldestAge.Round(time.Second))
	}
	return nil
}

func runCacheClearCmd(c *cli.Context) error {
	pc, cfg, err := openCache(c)
	if err != nil {
		return err
	}
	if err := pc.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Cleared %s\n", cfg.Cache.Dir)
	return nil
}
