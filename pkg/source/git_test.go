package source

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"forge-hq/t3dport/pkg/config"
)

// createOrigin creates a repository with one committed document and returns
// it with its checked out branch name.
func createOrigin(t *testing.T, dir string) (*gogit.Repository, string) {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	commitFile(t, repo, dir, "Maps/PersistentLevel.T3D", "Begin Object Class=Level Name=PersistentLevel\nEnd Object\n")

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to read HEAD: %v", err)
	}
	return repo, head.Name().Short()
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, rel, content string) {
	t.Helper()

	writeFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add(rel); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	_, err = worktree.Commit("update "+rel, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func TestNewGitSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitSourceConfig
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "empty repository", cfg: &config.GitSourceConfig{Branch: "main", LocalPath: "/tmp/x"}, wantErr: true},
		{name: "empty branch", cfg: &config.GitSourceConfig{Repository: "https://example.com/r.git", LocalPath: "/tmp/x"}, wantErr: true},
		{name: "bad auth", cfg: &config.GitSourceConfig{
			Repository: "https://example.com/r.git", Branch: "main", LocalPath: "/tmp/x",
			Auth: config.GitAuthConfig{Type: "token"},
		}, wantErr: true},
		{name: "valid", cfg: &config.GitSourceConfig{
			Repository: "https://example.com/r.git", Branch: "main", LocalPath: "/tmp/x",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGitSource(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGitSource() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGitSource_SyncClonesAndPulls(t *testing.T) {
	ctx := context.Background()

	originDir := t.TempDir()
	origin, branch := createOrigin(t, originDir)

	cloneDir := filepath.Join(t.TempDir(), "clone")
	src, err := NewGitSource(&config.GitSourceConfig{
		Repository: originDir,
		Branch:     branch,
		LocalPath:  cloneDir,
		Timeout:    30 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}

	result, err := src.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() clone error = %v", err)
	}
	if !result.Cloned || result.ToSHA == "" {
		t.Errorf("Sync() = %+v, want a clone", result)
	}

	files, err := src.ListFiles(src.Root(), ".T3D")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if !reflect.DeepEqual(files, []string{"Maps/PersistentLevel.T3D"}) {
		t.Errorf("ListFiles() = %v", files)
	}

	result, err = src.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() up-to-date error = %v", err)
	}
	if result.HadChanges {
		t.Errorf("Sync() without new commits reported changes: %+v", result)
	}

	commitFile(t, origin, originDir, "Materials/Rock.T3D", "Begin Object Class=Material Name=Rock\nEnd Object\n")

	result, err = src.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() pull error = %v", err)
	}
	if !result.HadChanges {
		t.Fatalf("Sync() after commit reported no changes")
	}
	if !reflect.DeepEqual(result.ChangedFiles, []string{"Materials/Rock.T3D"}) {
		t.Errorf("ChangedFiles = %v, want [Materials/Rock.T3D]", result.ChangedFiles)
	}
	if _, err := os.Stat(filepath.Join(cloneDir, "Materials", "Rock.T3D")); err != nil {
		t.Errorf("pulled file missing: %v", err)
	}
}

func TestGitSource_HeadBeforeSync(t *testing.T) {
	src, err := NewGitSource(&config.GitSourceConfig{
		Repository: "https://example.com/r.git",
		Branch:     "main",
		LocalPath:  t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}
	if _, err := src.Head(); err == nil {
		t.Error("Head() before Sync returned no error")
	}
}
