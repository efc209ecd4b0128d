package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"forge-hq/t3dport/pkg/config"
)

// SyncResult describes a GitSource.Sync call.
type SyncResult struct {
	FromSHA      string
	ToSHA        string
	Cloned       bool
	HadChanges   bool
	ChangedFiles []string
	Duration     time.Duration
}

// GitSource is an OSSource over a local clone of a Git repository that
// holds T3D exports. Sync clones on first use and pulls afterwards.
type GitSource struct {
	*OSSource

	config *config.GitSourceConfig
	auth   AuthProvider
	logger *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewGitSource creates a Git-backed source. Nothing is fetched until Sync.
func NewGitSource(cfg *config.GitSourceConfig, logger *slog.Logger) (*GitSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("local path cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &GitSource{
		OSSource: NewOSSource(),
		config:   cfg,
		auth:     auth,
		logger:   logger.With("component", "source.git"),
	}, nil
}

// Root returns the local clone directory. Import source paths are resolved
// under it.
func (g *GitSource) Root() string {
	return g.config.LocalPath
}

// Sync brings the local clone up to date with the remote branch.
func (g *GitSource) Sync(ctx context.Context) (*SyncResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()

	if g.repo == nil {
		cloned, err := g.open(ctx)
		if err != nil {
			return nil, err
		}
		if cloned {
			head, err := g.head()
			if err != nil {
				return nil, err
			}
			result := &SyncResult{ToSHA: head, Cloned: true, HadChanges: true, Duration: time.Since(start)}
			g.logger.Info("Repository cloned",
				"repository", g.config.Repository,
				"branch", g.config.Branch,
				"sha", head,
				"duration_ms", result.Duration.Milliseconds(),
			)
			return result, nil
		}
	}

	result, err := g.pull(ctx)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)

	g.logger.Info("Repository synced",
		"from", result.FromSHA,
		"to", result.ToSHA,
		"changed_files", len(result.ChangedFiles),
	)
	return result, nil
}

// Head returns the SHA of the checked out commit.
func (g *GitSource) Head() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.head()
}

// open opens an existing clone or clones the repository. It reports
// whether a clone happened.
func (g *GitSource) open(ctx context.Context) (bool, error) {
	if g.config.CleanOnStart {
		if err := os.RemoveAll(g.config.LocalPath); err != nil {
			return false, fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(g.config.LocalPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(g.config.LocalPath)
		if err != nil {
			return false, fmt.Errorf("failed to open existing repo: %w", err)
		}
		g.repo = repo
		return false, nil
	}

	if err := os.MkdirAll(g.config.LocalPath, 0755); err != nil {
		return false, fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := g.auth.GetAuth()
	if err != nil {
		return false, fmt.Errorf("failed to get auth: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:           g.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(g.config.Branch),
		SingleBranch:  g.config.Depth > 0,
		Depth:         g.config.Depth,
		Auth:          auth,
	}

	cloneCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, g.config.LocalPath, false, opts)
	if err != nil {
		return false, fmt.Errorf("failed to clone repository: %w", err)
	}
	g.repo = repo
	return true, nil
}

func (g *GitSource) pull(ctx context.Context) (*SyncResult, error) {
	fromSHA, err := g.head()
	if err != nil {
		return nil, err
	}

	worktree, err := g.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := g.auth.GetAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth: %w", err)
	}

	pullCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(g.config.Branch),
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("failed to pull: %w", err)
	}

	toSHA, err := g.head()
	if err != nil {
		return nil, err
	}

	result := &SyncResult{FromSHA: fromSHA, ToSHA: toSHA, HadChanges: fromSHA != toSHA}
	if result.HadChanges {
		files, err := g.changedFiles(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to get changed files: %w", err)
		}
		result.ChangedFiles = files
	}
	return result, nil
}

func (g *GitSource) head() (string, error) {
	if g.repo == nil {
		return "", fmt.Errorf("repository not initialized, call Sync() first")
	}
	ref, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

func (g *GitSource) changedFiles(fromSHA, toSHA string) ([]string, error) {
	fromCommit, err := g.repo.CommitObject(plumbing.NewHash(fromSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get from commit: %w", err)
	}
	toCommit, err := g.repo.CommitObject(plumbing.NewHash(toSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get to commit: %w", err)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get to tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var files []string
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		} else if change.From.Name != "" {
			files = append(files, change.From.Name)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (g *GitSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.config.Timeout)
}
