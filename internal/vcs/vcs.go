// Package vcs finds the files a change set touches in a git repository.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrUnknownRevision is returned when a revision cannot be resolved.
var ErrUnknownRevision = errors.New("unknown revision")

// Repository is the part of git incremental analysis needs. Paths are
// repository-relative and slash-separated.
type Repository interface {
	// Root returns the working tree root.
	Root() string
	// Committed returns paths added or modified between rev and HEAD.
	Committed(rev string) ([]string, error)
	// Dirty returns paths with staged, unstaged or untracked changes.
	// Deleted paths are omitted.
	Dirty() ([]string, error)
}

// Opener opens the repository containing a path.
type Opener interface {
	Open(path string) (Repository, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Repository, error)

func (f OpenerFunc) Open(path string) (Repository, error) { return f(path) }

// Git opens repositories with go-git, searching parent directories for .git.
var Git Opener = OpenerFunc(openGit)

func openGit(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &gitRepo{repo: repo, wt: wt}, nil
}

type gitRepo struct {
	repo *git.Repository
	wt   *git.Worktree
}

func (r *gitRepo) Root() string {
	return r.wt.Filesystem.Root()
}

func (r *gitRepo) tree(rev plumbing.Revision) (*object.Tree, plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(rev)
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("%w %q: %w", ErrUnknownRevision, string(rev), err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, plumbing.ZeroHash, err
	}
	tree, err := commit.Tree()
	return tree, *hash, err
}

func (r *gitRepo) Committed(rev string) ([]string, error) {
	from, base, err := r.tree(plumbing.Revision(rev))
	if err != nil {
		return nil, err
	}
	to, head, err := r.tree(plumbing.Revision(plumbing.HEAD))
	if err != nil {
		return nil, err
	}
	if base == head {
		return nil, nil
	}

	changes, err := object.DiffTreeWithOptions(context.Background(), from, to, &object.DiffTreeOptions{DetectRenames: true})
	if err != nil {
		return nil, fmt.Errorf("diff %s..HEAD: %w", rev, err)
	}
	var paths []string
	for _, c := range changes {
		if c.To.Name != "" {
			paths = append(paths, c.To.Name)
		}
	}
	return paths, nil
}

func (r *gitRepo) Dirty() ([]string, error) {
	status, err := r.wt.Status()
	if err != nil {
		return nil, err
	}
	var paths []string
	for path, s := range status {
		switch {
		case s.Staging == git.Deleted, s.Worktree == git.Deleted:
		case s.Staging != git.Unmodified, s.Worktree != git.Unmodified:
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// ChangedFiles returns the absolute, slash-separated paths of files that
// differ between rev and the working tree of the repository containing
// path: committed changes since rev plus uncommitted and untracked files.
func ChangedFiles(opener Opener, path, rev string) ([]string, error) {
	repo, err := opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	committed, err := repo.Committed(rev)
	if err != nil {
		return nil, err
	}
	dirty, err := repo.Dirty()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	root := repo.Root()
	files := make([]string, 0, len(committed)+len(dirty))
	for _, name := range slices.Concat(committed, dirty) {
		files = append(files, filepath.ToSlash(filepath.Join(root, filepath.FromSlash(name))))
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
