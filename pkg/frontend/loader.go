// Package frontend turns source files into parsed files: declarations and
// unresolved references ready for graph construction.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/pyctamovna/SearchDeadCode-sub000/internal/cache"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/fileproc"
	"github.com/pyctamovna/SearchDeadCode-sub000/internal/progress"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/config"
	"github.com/pyctamovna/SearchDeadCode-sub000/pkg/models"
)

// Version identifies the extractor output. Bump it when extraction changes
// so cached parses are discarded.
const Version = "java-1"

// MaxFileSize bounds the source files read.
const MaxFileSize = 16 << 20

// ErrUnsupportedFile is returned for paths no front-end handles.
var ErrUnsupportedFile = errors.New("unsupported file")

// Kind is the front-end that handles a path.
type Kind int

const (
	KindUnsupported Kind = iota
	KindJava
	KindDocumentJSON
	KindDocumentYAML
	// KindKotlin is recognized so that sources without a document can be
	// reported; it has no built-in parser.
	KindKotlin
)

// Detect returns the front-end for path.
func Detect(path string) Kind {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".sdc.json"):
		return KindDocumentJSON
	case strings.HasSuffix(base, ".sdc.yaml"), strings.HasSuffix(base, ".sdc.yml"):
		return KindDocumentYAML
	case strings.HasSuffix(base, ".java"):
		return KindJava
	case strings.HasSuffix(base, ".kt"), strings.HasSuffix(base, ".kts"):
		return KindKotlin
	}
	return KindUnsupported
}

// Loader discovers and parses source files.
type Loader struct {
	cfg          *config.Config
	cache        *cache.Cache
	workers      int
	logger       *slog.Logger
	showProgress bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfig sets the exclusion rules.
func WithConfig(cfg *config.Config) Option {
	return func(l *Loader) {
		if cfg != nil {
			l.cfg = cfg
		}
	}
}

// WithCache caches Java parses.
func WithCache(c *cache.Cache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithWorkers bounds parse concurrency. Zero uses the fileproc default.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		l.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithProgress shows a progress bar while parsing.
func WithProgress(show bool) Option {
	return func(l *Loader) {
		l.showProgress = show
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		cfg:    config.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is the outcome of one Load.
type Result struct {
	Files     []models.ParsedFile
	Errors    fileproc.Failures
	Skipped   int // Kotlin sources with no document
	CacheHits int
}

// Load parses every supported file under paths. Per-file failures are
// collected in Result.Errors; only a path that cannot be walked fails Load.
func (l *Loader) Load(ctx context.Context, paths []string) (*Result, error) {
	files, kotlin, err := l.Discover(paths)
	if err != nil {
		return nil, err
	}
	res := &Result{Skipped: kotlin}
	if kotlin > 0 {
		l.logger.Warn("kotlin sources have no built-in parser; supply a parser-output document",
			"files", kotlin)
	}

	tracker := progress.NewTracker("Parsing", len(files), progress.WithEnabled(l.showProgress))
	var hits atomic.Int64
	parsed, errs := fileproc.Map(ctx, files, l.workers, func(ctx context.Context, path string) ([]models.ParsedFile, error) {
		out, hit, err := l.parse(ctx, path)
		if hit {
			hits.Add(1)
		}
		return out, err
	}, tracker.Tick)
	if len(errs) > 0 {
		tracker.FinishError(errs)
	} else {
		tracker.FinishSuccess()
	}

	for _, group := range parsed {
		res.Files = append(res.Files, group...)
	}
	res.Errors = errs
	res.CacheHits = int(hits.Load())
	for _, e := range errs {
		l.logger.Warn("skipping file", "path", e.Path, "error", e.Err)
	}
	l.logger.Debug("sources loaded",
		"files", len(res.Files), "failed", errs.Len(), "cache_hits", res.CacheHits)
	return res, nil
}

// Discover expands paths into the sorted list of parseable files and counts
// Kotlin sources that were passed over. Directories are walked with the
// configured exclusions; explicit files are taken as given.
func (l *Loader) Discover(paths []string) ([]string, int, error) {
	seen := make(map[string]bool)
	var files []string
	kotlin := 0
	add := func(path string) {
		switch Detect(path) {
		case KindUnsupported:
		case KindKotlin:
			kotlin++
		default:
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.ToSlash(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil || rel == "." {
				return nil
			}
			if d.IsDir() {
				if l.cfg.ShouldExclude(rel + "/") {
					return filepath.SkipDir
				}
				return nil
			}
			if l.cfg.ShouldExclude(rel) {
				return nil
			}
			add(filepath.ToSlash(path))
			return nil
		})
		if err != nil {
			return nil, 0, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	slices.Sort(files)
	return files, kotlin, nil
}

// parse runs the front-end for one file and reports whether the cache served it.
func (l *Loader) parse(ctx context.Context, path string) ([]models.ParsedFile, bool, error) {
	kind := Detect(path)
	if kind == KindUnsupported || kind == KindKotlin {
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if info.Size() > MaxFileSize {
		return nil, false, fmt.Errorf("file too large: %d bytes", info.Size())
	}

	switch kind {
	case KindDocumentJSON, KindDocumentYAML:
		f, err := os.Open(path)
		if err != nil {
			return nil, false, err
		}
		defer f.Close()
		read := ReadDocumentJSON
		if kind == KindDocumentYAML {
			read = ReadDocumentYAML
		}
		doc, err := read(f)
		if err != nil {
			return nil, false, err
		}
		return doc.Files, false, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	if cached, ok := l.cache.Lookup(path, src); ok {
		return []models.ParsedFile{*cached}, true, nil
	}
	parsed, err := ParseJava(ctx, path, src)
	if err != nil {
		return nil, false, err
	}
	if err := l.cache.Store(path, src, parsed); err != nil {
		l.logger.Debug("cache store failed", "path", path, "error", err)
	}
	return []models.ParsedFile{*parsed}, false, nil
}
