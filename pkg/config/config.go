package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml"

	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/analyzer/reachability"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for searchdeadcode.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// Entry point discovery
	EntryPoints EntryPointConfig `koanf:"entry_points" toml:"entry_points"`

	// Runtime and optimizer evidence
	Oracles OracleConfig `koanf:"oracles" toml:"oracles"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls the reachability run.
type AnalysisConfig struct {
	Mode              string `koanf:"mode" toml:"mode"` // standard, deep
	Workers           int    `koanf:"workers" toml:"workers"`
	MinConfidence     string `koanf:"min_confidence" toml:"min_confidence"`
	IncludeAdvisories bool   `koanf:"include_advisories" toml:"include_advisories"`
	Cycles            bool   `koanf:"cycles" toml:"cycles"`
}

// EntryPointConfig extends the built-in entry point rules.
type EntryPointConfig struct {
	Main        bool     `koanf:"main" toml:"main"`
	Annotations []string `koanf:"annotations" toml:"annotations"`
	BaseClasses []string `koanf:"base_classes" toml:"base_classes"`
	Retain      []string `koanf:"retain" toml:"retain"`
	Patterns    []string `koanf:"patterns" toml:"patterns"`
	Manifests   []string `koanf:"manifests" toml:"manifests"`
}

// OracleConfig lists evidence files.
type OracleConfig struct {
	Coverage       []string `koanf:"coverage" toml:"coverage"`
	OptimizerUsage []string `koanf:"optimizer_usage" toml:"optimizer_usage"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns []string `koanf:"patterns" toml:"patterns"`
	Dirs     []string `koanf:"dirs" toml:"dirs"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon, sarif
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Mode:          string(reachability.ModeStandard),
			MinConfidence: models.ConfidenceLow.String(),
			Cycles:        true,
		},
		EntryPoints: EntryPointConfig{
			Main:        true,
			Annotations: []string{},
			BaseClasses: []string{},
			Retain:      []string{},
			Patterns:    []string{},
			Manifests:   []string{},
		},
		Oracles: OracleConfig{
			Coverage:       []string{},
			OptimizerUsage: []string{},
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"R.java",
				"BuildConfig.java",
				"*_Factory.java",
				"*_MembersInjector.java",
				"Dagger*.java",
				"Hilt_*.java",
			},
			Dirs: []string{
				"build",
				".gradle",
				".git",
				".idea",
				"node_modules",
				"generated",
				".searchdeadcode",
			},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".searchdeadcode/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadResult is a loaded config and the file it came from. Source is empty
// when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs replaces the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// FileNames are the config file names searched, in order.
var FileNames = []string{
	"searchdeadcode.toml",
	"searchdeadcode.yaml",
	"searchdeadcode.yml",
	"searchdeadcode.json",
	".searchdeadcode.toml",
	".searchdeadcode.yaml",
	".searchdeadcode.yml",
	".searchdeadcode.json",
}

// LoadConfig loads an explicit file, or the first config found in the search
// directories, or the defaults. A file that exists but fails to load is an
// error.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: []string{".", ".searchdeadcode"}}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range o.dirs {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}
	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	res, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return res.Config
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	var errs []error
	if _, err := reachability.ParseMode(c.Analysis.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := models.ParseConfidence(c.Analysis.MinConfidence); err != nil {
		errs = append(errs, err)
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be >= 0, got %d", c.Cache.TTL))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Mode returns the parsed analysis mode.
func (c *Config) Mode() reachability.Mode {
	m, err := reachability.ParseMode(c.Analysis.Mode)
	if err != nil {
		return reachability.ModeStandard
	}
	return m
}

// MinConfidence returns the parsed confidence floor.
func (c *Config) MinConfidence() models.Confidence {
	conf, err := models.ParseConfidence(c.Analysis.MinConfidence)
	if err != nil {
		return models.ConfidenceLow
	}
	return conf
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(slashed, "/"+dir+"/") || strings.HasPrefix(slashed, dir+"/") {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, slashed); matched {
				return true
			}
		}
	}
	return false
}

// TOML renders c as a TOML document.
func (c *Config) TOML() ([]byte, error) {
	content, err := gotoml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config to TOML: %w", err)
	}
	return content, nil
}
