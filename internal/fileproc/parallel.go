// Package fileproc runs per-file work on a bounded worker pool.
package fileproc

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// FileError records why one file could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Failures lists the files a Map call could not process, ordered by path.
// A nil Failures means every file succeeded.
type Failures []FileError

// Len returns the number of failed files.
func (f Failures) Len() int {
	return len(f)
}

func (f Failures) Error() string {
	switch len(f) {
	case 0:
		return "no failures"
	case 1:
		return f[0].Error()
	}
	return fmt.Sprintf("%d files failed (first: %v)", len(f), f[0])
}

// DefaultWorkerMultiplier scales NumCPU into a worker count. Parsing mixes
// file reads with cgo tree-sitter calls.
const DefaultWorkerMultiplier = 2

// Map runs fn over files on at most maxWorkers goroutines (2x NumCPU when
// maxWorkers <= 0) and returns the successful results in input order.
// Files not started before ctx is cancelled fail with the context error.
// onProgress, if set, is called once per file.
func Map[T any](
	ctx context.Context,
	files []string,
	maxWorkers int,
	fn func(ctx context.Context, path string) (T, error),
	onProgress func(),
) ([]T, Failures) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	type slot struct {
		val T
		ok  bool
	}
	slots := make([]slot, len(files))
	var (
		mu       sync.Mutex
		failures Failures
	)
	fail := func(path string, err error) {
		mu.Lock()
		failures = append(failures, FileError{Path: path, Err: err})
		mu.Unlock()
	}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				fail(path, err)
				return nil
			}
			v, err := fn(ctx, path)
			if err != nil {
				fail(path, err)
				return nil
			}
			slots[i] = slot{val: v, ok: true}
			return nil
		})
	}
	_ = p.Wait()

	results := make([]T, 0, len(files))
	for _, s := range slots {
		if s.ok {
			results = append(results, s.val)
		}
	}
	slices.SortFunc(failures, func(a, b FileError) int { return cmp.Compare(a.Path, b.Path) })
	return results, failures
}
