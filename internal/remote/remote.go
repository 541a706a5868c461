// Package remote resolves repository references given in place of local
// paths and clones them for analysis.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Source represents a remote repository to analyze.
type Source struct {
	URL      string // normalized git URL
	Ref      string // branch, tag, or SHA (empty = default branch)
	CloneDir string // temp directory after clone
}

// Parse detects if a path is a remote reference.
// Returns nil if path exists on filesystem (local path takes precedence).
func Parse(path string) (*Source, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	path, ref, hasRef := splitRef(path)
	if hasRef && ref == "" {
		return nil, fmt.Errorf("empty ref after @ in %q", path)
	}

	switch {
	case strings.Contains(path, "://"):
		return &Source{URL: path, Ref: ref}, nil
	case isSCPLike(path):
		return &Source{URL: path, Ref: ref}, nil
	case isHostPath(path):
		return &Source{URL: "https://" + path, Ref: ref}, nil
	case isGitHubShorthand(path):
		return &Source{URL: "https://github.com/" + path, Ref: ref}, nil
	}
	return nil, nil
}

// splitRef separates a trailing @ref. An @ before the host separator is
// userinfo, not a ref.
func splitRef(s string) (string, string, bool) {
	start := 0
	if i := strings.Index(s, "://"); i >= 0 {
		start = i + 3
	}
	rest := s[start:]
	sep := strings.IndexAny(rest, "/:")
	at := strings.LastIndex(rest, "@")
	if sep < 0 || at <= sep {
		return s, "", false
	}
	return s[:start+at], rest[at+1:], true
}

// isSCPLike matches user@host:path.
func isSCPLike(path string) bool {
	at := strings.Index(path, "@")
	colon := strings.Index(path, ":")
	return at > 0 && colon > at
}

// isHostPath matches host.tld/owner/repo.
func isHostPath(path string) bool {
	slash := strings.Index(path, "/")
	return slash > 0 && strings.Contains(path[:slash], ".") && strings.Count(path, "/") >= 2
}

// isGitHubShorthand returns true if path matches owner/repo pattern.
func isGitHubShorthand(path string) bool {
	slashIdx := strings.Index(path, "/")
	if slashIdx == -1 || strings.Count(path, "/") != 1 {
		return false
	}
	if strings.Contains(path[:slashIdx], ".") {
		return false
	}
	return slashIdx > 0 && slashIdx < len(path)-1
}

// Clone clones the repository into a new temp directory and checks out Ref.
// A ref is tried as a branch, then a tag, then any revision (which needs a
// full clone). Progress messages go to progress when non-nil. file:// URLs
// are always cloned in full.
func (s *Source) Clone(ctx context.Context, progress io.Writer, shallow bool) error {
	base := git.CloneOptions{URL: s.URL, Progress: progress}
	if shallow && !strings.HasPrefix(s.URL, "file://") {
		base.Depth = 1
	}

	if s.Ref == "" {
		return s.attempt(ctx, base)
	}

	var errs []error
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(s.Ref),
		plumbing.NewTagReferenceName(s.Ref),
	} {
		opts := base
		opts.ReferenceName = name
		opts.SingleBranch = true
		err := s.attempt(ctx, opts)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		errs = append(errs, err)
	}

	opts := base
	opts.Depth = 0
	if err := s.attempt(ctx, opts); err != nil {
		return errors.Join(append(errs, err)...)
	}
	if err := s.checkout(s.Ref); err != nil {
		s.Cleanup()
		return err
	}
	return nil
}

func (s *Source) attempt(ctx context.Context, opts git.CloneOptions) error {
	dir, err := os.MkdirTemp("", "searchdeadcode-clone-*")
	if err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, &opts); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("clone %s: %w", s.URL, err)
	}
	s.CloneDir = dir
	return nil
}

func (s *Source) checkout(rev string) error {
	repo, err := git.PlainOpen(s.CloneDir)
	if err != nil {
		return err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("resolve %s in %s: %w", rev, s.URL, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
}

// Cleanup removes the clone directory.
func (s *Source) Cleanup() error {
	if s.CloneDir == "" {
		return nil
	}
	err := os.RemoveAll(s.CloneDir)
	s.CloneDir = ""
	return err
}
