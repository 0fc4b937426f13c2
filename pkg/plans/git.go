package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
)

// CommitInfo describes the commit plans were loaded from.
type CommitInfo struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Branch    string    `json:"branch"`
}

// PullResult is the outcome of a pull.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string
	HadChanges   bool
}

// GitSource keeps a local clone of a plan repository.
type GitSource struct {
	config    *config.GitConfig
	localPath string
	auth      AuthProvider
	repo      *gogit.Repository
	mu        sync.RWMutex
}

// NewGitSource creates a git plan source. Clone must be called before use.
func NewGitSource(cfg *config.GitConfig) (*GitSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "insurance-assistant-plans")
	}

	return &GitSource{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
	}, nil
}

// Clone clones the repository, or opens an existing clone at the local path.
func (g *GitSource) Clone(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.config.Clone.CleanOnStart {
		if err := os.RemoveAll(g.localPath); err != nil {
			return fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(g.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(g.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		g.repo = repo
		return nil
	}

	if err := os.MkdirAll(g.localPath, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	auth, err := g.auth.GetAuth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:           g.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(g.config.Branch),
		SingleBranch:  g.config.Clone.Depth > 0,
		Depth:         g.config.Clone.Depth,
		Auth:          auth,
	}

	cloneCtx, cancel := g.withTimeout(ctx)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, g.localPath, false, opts)
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	g.repo = repo
	return nil
}

// Pull fetches and merges the tracked branch.
func (g *GitSource) Pull(ctx context.Context) (*PullResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	ref, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	fromSHA := ref.Hash().String()

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

	newRef, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	toSHA := newRef.Hash().String()

	result := &PullResult{
		FromSHA:    fromSHA,
		ToSHA:      toSHA,
		HadChanges: fromSHA != toSHA,
	}
	if result.HadChanges {
		files, err := g.changedFiles(fromSHA, toSHA)
		if err != nil {
			return nil, fmt.Errorf("failed to get changed files: %w", err)
		}
		result.ChangedFiles = files
	}
	return result, nil
}

// CurrentCommit returns the HEAD commit of the clone.
func (g *GitSource) CurrentCommit() (*CommitInfo, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.repo == nil {
		return nil, fmt.Errorf("repository not initialized, call Clone() first")
	}

	ref, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := g.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	return &CommitInfo{
		SHA:       commit.Hash.String(),
		Author:    commit.Author.Name,
		Timestamp: commit.Author.When,
		Message:   commit.Message,
		Branch:    g.config.Branch,
	}, nil
}

// PlanPath is the directory inside the clone that holds plan files.
func (g *GitSource) PlanPath() string {
	return filepath.Join(g.localPath, g.config.Path)
}

// AuthType names the configured auth kind.
func (g *GitSource) AuthType() string {
	return g.auth.Type()
}

func (g *GitSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.config.Poll.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.config.Poll.Timeout)
}

// changedFiles must be called with the lock held.
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
	return files, nil
}

// GitWatcher polls a GitSource and reloads when plan files change.
type GitWatcher struct {
	source   *GitSource
	interval time.Duration
	isPlan   func(path string) bool
	reload   func() error
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewGitWatcher creates a poll watcher. isPlan selects the changed paths that
// warrant a reload.
func NewGitWatcher(source *GitSource, interval time.Duration, isPlan func(string) bool, reload func() error, logger *slog.Logger) *GitWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitWatcher{
		source:   source,
		interval: interval,
		isPlan:   isPlan,
		reload:   reload,
		logger:   logger,
	}
}

// Start begins polling in the background.
func (w *GitWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.pollLoop(ctx)

	w.logger.Info("git plan watcher started", "poll_interval", w.interval)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (w *GitWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
}

// Poll checks the remote once and reloads if plan files changed. It reports
// whether a reload ran.
func (w *GitWatcher) Poll(ctx context.Context) (bool, error) {
	result, err := w.source.Pull(ctx)
	if err != nil {
		return false, err
	}
	if !result.HadChanges {
		return false, nil
	}

	relevant := false
	for _, f := range result.ChangedFiles {
		if w.isPlan == nil || w.isPlan(f) {
			relevant = true
			break
		}
	}
	if !relevant {
		w.logger.Info("non-plan files changed, skipping reload",
			"to_sha", shortSHA(result.ToSHA),
			"changed_files", len(result.ChangedFiles))
		return false, nil
	}

	w.logger.Info("plan changes detected",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles))

	if err := w.reload(); err != nil {
		return false, fmt.Errorf("reload failed: %w", err)
	}
	return true, nil
}

func (w *GitWatcher) pollLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				w.logger.Error("git poll failed", "error", err)
			}
		}
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
