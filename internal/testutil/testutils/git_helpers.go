package testutils

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SetupTestGitRepo initializes a temporary git repository for testing.
// Returns the repository, its worktree, and the absolute path to the temporary directory.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()

	tempDir := t.TempDir()

	repo, err := git.PlainInit(tempDir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	return repo, w, tempDir
}

// CommitAll stages every file in the worktree and commits it, returning the commit hash.
func CommitAll(t *testing.T, w *git.Worktree, message string) string {
	t.Helper()

	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatalf("failed to stage files: %v", err)
	}
	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "labdocs test", Email: "test@example.invalid", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}
