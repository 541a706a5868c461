// Package analysis runs the dead-code pipeline: load sources, build the
// reference graph, find entry points, compute reachability and dead cycles,
// then grade and filter findings.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/cache"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/progress"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/vcs"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/analyzer/confidence"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/analyzer/cycles"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/analyzer/reachability"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/entrypoint"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/frontend"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/graph"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/oracle/coverage"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/oracle/optimizer"
)

var (
	_ confidence.Coverage  = (*coverage.Set)(nil)
	_ confidence.Optimizer = (*optimizer.Report)(nil)
)

// ErrNoInput is returned when Run is given no paths.
var ErrNoInput = errors.New("no input paths")

// Service orchestrates dead-code analysis.
type Service struct {
	config       *config.Config
	opener       vcs.Opener
	cache        *cache.Cache
	logger       *slog.Logger
	showProgress bool
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithCache sets the parse cache. Without one, a cache is opened from the
// config when caching is enabled.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress shows progress bars while parsing.
func WithProgress(show bool) Option {
	return func(s *Service) {
		s.showProgress = show
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.Git,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Options override the configuration for one run. Zero values keep the
// configured setting; oracle paths are added to the configured ones.
type Options struct {
	Mode              string
	MinConfidence     string
	ChangedSince      string
	Coverage          []string
	OptimizerUsage    []string
	// IncludeAdvisories relabels dead code matched by the deep-mode name and
	// path heuristics (debug-only, test helper, deprecated, stub).
	IncludeAdvisories bool
	// Cycles forces dead cycle detection even when disabled in config.
	Cycles bool
}

type runSettings struct {
	mode       reachability.Mode
	min        models.Confidence
	advisories bool
	cycles     bool
	coverage   []string
	usage      []string
}

func (s *Service) settings(opts Options) (runSettings, error) {
	cfg := s.config
	rs := runSettings{
		mode:       cfg.Mode(),
		min:        cfg.MinConfidence(),
		advisories: cfg.Analysis.IncludeAdvisories || opts.IncludeAdvisories,
		cycles:     cfg.Analysis.Cycles || opts.Cycles,
		coverage:   append(slices.Clone(cfg.Oracles.Coverage), opts.Coverage...),
		usage:      append(slices.Clone(cfg.Oracles.OptimizerUsage), opts.OptimizerUsage...),
	}
	if opts.Mode != "" {
		m, err := reachability.ParseMode(opts.Mode)
		if err != nil {
			return rs, err
		}
		rs.mode = m
	}
	if opts.MinConfidence != "" {
		c, err := models.ParseConfidence(opts.MinConfidence)
		if err != nil {
			return rs, err
		}
		rs.min = c
	}
	return rs, nil
}

// Run analyzes the sources under paths and returns the graded report.
func (s *Service) Run(ctx context.Context, paths []string, opts Options) (*models.Report, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}
	rs, err := s.settings(opts)
	if err != nil {
		return nil, err
	}

	loaded, err := s.loader().Load(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spinner := progress.NewSpinner("Resolving references", progress.WithEnabled(s.showProgress))
	g, stats := graph.NewBuilder(
		graph.WithWorkers(s.config.Analysis.Workers),
		graph.WithLogger(s.logger),
	).Build(loaded.Files)
	s.logger.Debug("graph built",
		"declarations", g.Len(), "edges", g.EdgeCount(), "unresolved", stats.Unresolved)

	detector, err := s.entryDetector()
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	entries := detector.Detect(g)

	reachOpts := []reachability.Option{
		reachability.WithMode(rs.mode),
		reachability.WithWorkers(s.config.Analysis.Workers),
		reachability.WithLogger(s.logger),
	}
	if !rs.advisories {
		reachOpts = append(reachOpts, reachability.WithDetectors())
	}
	result, err := reachability.New(reachOpts...).Analyze(ctx, g, entries)
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	spinner.FinishSuccess()

	report := &models.Report{Summary: models.NewSummary()}
	if rs.cycles {
		report.Cycles = cycles.New(cycles.WithLogger(s.logger)).Detect(g, result.Reachable)
	}

	findings := s.engine(rs).Grade(g, result.Dead)

	if opts.ChangedSince != "" {
		findings, err = s.filterChanged(findings, paths[0], opts.ChangedSince)
		if err != nil {
			return nil, err
		}
	}

	findings = slices.DeleteFunc(findings, func(f models.Finding) bool {
		return f.Confidence() < rs.min
	})
	report.Findings = findings

	sum := &report.Summary
	sum.FilesAnalyzed = len(loaded.Files)
	sum.FilesSkipped = loaded.Errors.Len() + loaded.Skipped
	sum.TotalDeclarations = g.Len()
	sum.Reachable = result.Reachable.Len()
	sum.EntryPoints = result.EntryPoints
	sum.Suppressed = len(result.Suppressed)
	sum.Passes = result.Passes
	for i := range findings {
		sum.AddFinding(&findings[i])
	}
	sum.CalculatePercentage()

	s.logger.Info("analysis complete",
		"files", sum.FilesAnalyzed, "declarations", sum.TotalDeclarations,
		"findings", sum.TotalFindings, "mode", rs.mode)
	return report, nil
}

// Cycles runs the pipeline up to dead cycle detection.
func (s *Service) Cycles(ctx context.Context, paths []string, opts Options) (*models.CycleReport, error) {
	opts.Cycles = true
	report, err := s.Run(ctx, paths, opts)
	if err != nil {
		return nil, err
	}
	return report.Cycles, nil
}

func (s *Service) loader() *frontend.Loader {
	c := s.cache
	if c == nil && s.config.Cache.Enabled {
		opened, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTL, true, cache.WithVersion(frontend.Version))
		if err != nil {
			s.logger.Warn("parse cache unavailable", "dir", s.config.Cache.Dir, "error", err)
		} else {
			c = opened
		}
	}
	return frontend.NewLoader(
		frontend.WithConfig(s.config),
		frontend.WithCache(c),
		frontend.WithWorkers(s.config.Analysis.Workers),
		frontend.WithLogger(s.logger),
		frontend.WithProgress(s.showProgress),
	)
}

func (s *Service) entryDetector() (*entrypoint.Detector, error) {
	ep := s.config.EntryPoints
	opts := []entrypoint.Option{
		entrypoint.WithMain(ep.Main),
		entrypoint.WithAnnotations(ep.Annotations...),
		entrypoint.WithBaseClasses(ep.BaseClasses...),
		entrypoint.WithRetain(ep.Retain...),
		entrypoint.WithPatterns(ep.Patterns...),
		entrypoint.WithLogger(s.logger),
	}
	for _, path := range ep.Manifests {
		m, err := entrypoint.LoadManifest(path)
		if err != nil {
			s.logger.Warn("skipping manifest", "path", path, "error", err)
			continue
		}
		opts = append(opts, entrypoint.WithManifest(m))
	}
	d, err := entrypoint.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("entry point patterns: %w", err)
	}
	return d, nil
}

// engine builds the confidence engine. An oracle that fails to load is
// omitted with a warning.
func (s *Service) engine(rs runSettings) *confidence.Engine {
	opts := []confidence.Option{confidence.WithLogger(s.logger)}
	if len(rs.coverage) > 0 {
		set, err := coverage.Load(rs.coverage...)
		if err != nil {
			s.logger.Warn("coverage oracle unavailable", "error", err)
		} else {
			s.logger.Debug("coverage loaded", "classes", set.Len())
			opts = append(opts, confidence.WithCoverage(set))
		}
	}
	if len(rs.usage) > 0 {
		rep, err := optimizer.Load(rs.usage...)
		if err != nil {
			s.logger.Warn("optimizer oracle unavailable", "error", err)
		} else {
			s.logger.Debug("optimizer usage loaded", "entries", rep.Len())
			opts = append(opts, confidence.WithOptimizer(rep))
		}
	}
	return confidence.New(opts...)
}

// filterChanged keeps findings in files changed since rev in the repository
// containing root.
func (s *Service) filterChanged(findings []models.Finding, root, rev string) ([]models.Finding, error) {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	changed, err := vcs.ChangedFiles(s.opener, root, rev)
	if err != nil {
		return nil, fmt.Errorf("changed since %s: %w", rev, err)
	}
	set := make(map[string]bool, len(changed))
	for _, f := range changed {
		set[f] = true
	}
	kept := slices.DeleteFunc(findings, func(f models.Finding) bool {
		abs, err := filepath.Abs(filepath.FromSlash(f.Declaration.Location.File))
		if err != nil {
			return true
		}
		return !set[filepath.ToSlash(abs)]
	})
	s.logger.Debug("filtered to changed files", "since", rev, "changed", len(changed), "findings", len(kept))
	return kept, nil
}
