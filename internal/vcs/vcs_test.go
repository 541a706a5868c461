package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func commitFiles(t *testing.T, repo *git.Repository, root, msg string, files map[string]string) {
	t.Helper()
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	_, err = w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

// initTestRepo creates a repository with two commits; the second touches
// only src/B.java.
func initTestRepo(t *testing.T) string {
	t.Helper()
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	commitFiles(t, repo, repoPath, "Initial commit", map[string]string{
		"src/A.java": "class A {}\n",
		"src/B.java": "class B {}\n",
	})
	commitFiles(t, repo, repoPath, "Touch B", map[string]string{
		"src/B.java": "class B { void b() {} }\n",
	})
	return repoPath
}

func TestGit_Open(t *testing.T) {
	repoPath := initTestRepo(t)

	repo, err := Git.Open(filepath.Join(repoPath, "src"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if repo.Root() != repoPath {
		t.Errorf("Root() = %q, want %q", repo.Root(), repoPath)
	}

	if _, err := Git.Open(t.TempDir()); err == nil {
		t.Error("Open() should fail outside a repository")
	}
}

func TestGitRepo_Committed(t *testing.T) {
	repo, err := Git.Open(initTestRepo(t))
	if err != nil {
		t.Fatal(err)
	}

	paths, err := repo.Committed("HEAD~1")
	if err != nil {
		t.Fatalf("Committed(HEAD~1) error = %v", err)
	}
	if len(paths) != 1 || paths[0] != "src/B.java" {
		t.Errorf("Committed(HEAD~1) = %v", paths)
	}

	paths, err = repo.Committed("HEAD")
	if err != nil || len(paths) != 0 {
		t.Errorf("Committed(HEAD) = %v, %v", paths, err)
	}

	if _, err := repo.Committed("no-such-branch"); !errors.Is(err, ErrUnknownRevision) {
		t.Errorf("Committed() error = %v, want ErrUnknownRevision", err)
	}
}

func TestGitRepo_CommittedRename(t *testing.T) {
	repoPath := initTestRepo(t)
	gitRepo, err := git.PlainOpen(repoPath)
	if err != nil {
		t.Fatal(err)
	}
	w, err := gitRepo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Move("src/A.java", "src/Renamed.java"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Commit("Rename A", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	}); err != nil {
		t.Fatal(err)
	}

	repo, err := Git.Open(repoPath)
	if err != nil {
		t.Fatal(err)
	}
	paths, err := repo.Committed("HEAD~1")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "src/Renamed.java" {
		t.Errorf("Committed() = %v, want the rename target only", paths)
	}
}

func TestGitRepo_Dirty(t *testing.T) {
	repoPath := initTestRepo(t)
	repo, err := Git.Open(repoPath)
	if err != nil {
		t.Fatal(err)
	}

	if paths, err := repo.Dirty(); err != nil || len(paths) != 0 {
		t.Errorf("clean Dirty() = %v, %v", paths, err)
	}

	if err := os.Remove(filepath.Join(repoPath, "src", "A.java")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoPath, "src", "C.java"), []byte("class C {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	paths, err := repo.Dirty()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "src/C.java" {
		t.Errorf("Dirty() = %v, want untracked file only", paths)
	}
}

func TestChangedFiles(t *testing.T) {
	repoPath := initTestRepo(t)
	abs := func(name string) string {
		return filepath.ToSlash(filepath.Join(repoPath, name))
	}

	files, err := ChangedFiles(Git, repoPath, "HEAD~1")
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	if len(files) != 1 || files[0] != abs("src/B.java") {
		t.Errorf("ChangedFiles() = %v", files)
	}

	if err := os.WriteFile(filepath.Join(repoPath, "src", "A.java"), []byte("class A { int x; }\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoPath, "src", "B.java"), []byte("class B { int y; }\n"), 0644); err != nil {
		t.Fatal(err)
	}
	files, err = ChangedFiles(Git, repoPath, "HEAD~1")
	if err != nil {
		t.Fatalf("ChangedFiles() error = %v", err)
	}
	want := []string{abs("src/A.java"), abs("src/B.java")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("ChangedFiles() = %v, want %v (deduplicated)", files, want)
	}
}

func TestChangedFiles_UnknownRevision(t *testing.T) {
	_, err := ChangedFiles(Git, initTestRepo(t), "v9.9.9")
	if !errors.Is(err, ErrUnknownRevision) {
		t.Errorf("ChangedFiles() error = %v, want ErrUnknownRevision", err)
	}
}

func TestChangedFiles_OpenError(t *testing.T) {
	boom := errors.New("boom")
	opener := OpenerFunc(func(string) (Repository, error) { return nil, boom })
	if _, err := ChangedFiles(opener, ".", "HEAD"); !errors.Is(err, boom) {
		t.Errorf("ChangedFiles() error = %v, want wrapped opener error", err)
	}
}
