package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
	"github.com/Sanjai-Magilan/insurance-assistant/pkg/policydoc"
)

// ReloadObserver is told about every load attempt.
type ReloadObserver func(count int, err error)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithReloadObserver registers fn to be called after each load or reload.
func WithReloadObserver(fn ReloadObserver) ManagerOption {
	return func(m *Manager) { m.observer = fn }
}

// Manager loads plans from a directory or git clone into a Registry and keeps
// them current. It implements Repository.
type Manager struct {
	config   *config.PlansConfig
	loader   *Loader
	registry *Registry
	logger   *slog.Logger
	observer ReloadObserver

	git        *GitSource
	gitWatcher *GitWatcher
	fsWatcher  *FileWatcher

	mu            sync.Mutex
	lastLoadError error
	commit        *CommitInfo
	watchWG       sync.WaitGroup
}

// NewManager creates a plan manager. Load must be called before use.
func NewManager(cfg *config.PlansConfig, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	loaderConfig := DefaultLoaderConfig()
	if len(cfg.Extensions) > 0 {
		loaderConfig.Extensions = cfg.Extensions
	}
	if cfg.MaxFileSize > 0 {
		loaderConfig.MaxFileSize = cfg.MaxFileSize
	}

	m := &Manager{
		config:   cfg,
		loader:   NewLoader(loaderConfig),
		registry: NewRegistry(),
		logger:   logger.With("component", "plans.manager"),
	}
	for _, opt := range opts {
		opt(m)
	}

	if cfg.Git.Enabled {
		source, err := NewGitSource(&cfg.Git)
		if err != nil {
			return nil, fmt.Errorf("failed to create git source: %w", err)
		}
		m.git = source
	}
	return m, nil
}

// Load performs the initial load. Files that fail to load are logged and
// skipped; Load fails only when no plan could be loaded.
func (m *Manager) Load(ctx context.Context) error {
	if m.git != nil {
		m.logger.Info("cloning plan repository",
			"repository", m.config.Git.Repository,
			"branch", m.config.Git.Branch,
			"auth", m.git.AuthType(),
		)
		if err := m.git.Clone(ctx); err != nil {
			m.observe(0, err)
			return fmt.Errorf("failed to clone plan repository: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	dir := m.Directory()

	docs, err := m.loader.LoadDirectory(dir)
	var errList *ErrorList
	switch {
	case err == nil:
	case errors.As(err, &errList) && len(docs) > 0:
		for _, e := range errList.Errors {
			m.logger.Warn("skipping plan file", "error", e)
		}
	default:
		m.lastLoadError = err
		m.observe(0, err)
		m.logger.Error("failed to load plans", "path", dir, "error", err)
		return err
	}

	if err := m.apply(docs); err != nil {
		return err
	}

	m.logger.Info("plans loaded",
		"path", dir,
		"count", len(docs),
		"version", m.registry.Version(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Reload reloads every plan. Any file error rejects the whole reload and the
// previously loaded plans stay active.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	dir := m.Directory()

	docs, err := m.loader.LoadDirectory(dir)
	if err != nil {
		m.lastLoadError = err
		m.observe(0, err)
		m.logger.Error("plan reload failed, keeping previous plans",
			"path", dir,
			"error", err,
			"active", m.registry.Count(),
		)
		return err
	}

	previous := m.registry.Version()
	if err := m.apply(docs); err != nil {
		return err
	}

	m.logger.Info("plans reloaded",
		"count", len(docs),
		"previous_version", previous,
		"version", m.registry.Version(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// apply must be called with m.mu held.
func (m *Manager) apply(docs []*policydoc.Document) error {
	if err := m.registry.Replace(docs); err != nil {
		m.lastLoadError = err
		m.observe(0, err)
		return fmt.Errorf("failed to register plans: %w", err)
	}
	m.lastLoadError = nil
	if m.git != nil {
		if commit, err := m.git.CurrentCommit(); err == nil {
			m.commit = commit
		}
	}
	m.observe(len(docs), nil)
	return nil
}

// Watch starts hot reload in the background: git polling when a git source
// is configured, file system notifications when plans.watch is set. It
// returns immediately; Close stops watching.
func (m *Manager) Watch(ctx context.Context) error {
	if m.git != nil {
		if m.config.Git.Poll.Interval <= 0 {
			return nil
		}
		m.gitWatcher = NewGitWatcher(m.git, m.config.Git.Poll.Interval, m.loader.HasExtension, m.Reload, m.logger)
		return m.gitWatcher.Start(ctx)
	}

	if !m.config.Watch {
		return nil
	}

	fw, err := NewFileWatcher(&FileWatcherConfig{
		Path:             m.config.Directory,
		DebounceInterval: m.config.DebounceInterval,
		Extensions:       m.loader.config.Extensions,
		SkipHidden:       true,
	}, m.logger)
	if err != nil {
		return err
	}
	m.fsWatcher = fw

	m.watchWG.Add(1)
	go func() {
		defer m.watchWG.Done()
		if err := fw.Watch(ctx, m.Reload); err != nil {
			m.logger.Error("plan watcher exited", "error", err)
		}
	}()
	return nil
}

// Close stops any running watcher.
func (m *Manager) Close() error {
	var err error
	if m.gitWatcher != nil {
		m.gitWatcher.Stop()
	}
	if m.fsWatcher != nil {
		err = m.fsWatcher.Stop()
	}
	m.watchWG.Wait()
	return err
}

// Directory is the directory plans are read from.
func (m *Manager) Directory() string {
	if m.git != nil {
		return m.git.PlanPath()
	}
	return m.config.Directory
}

// Get implements Repository.
func (m *Manager) Get(planID string) (*policydoc.Document, error) {
	return m.registry.Get(planID)
}

// List implements Repository.
func (m *Manager) List() []Summary {
	return m.registry.List()
}

// Resolve implements Repository.
func (m *Manager) Resolve(text string) (*policydoc.Document, bool) {
	return m.registry.Resolve(text)
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// LastLoadError returns the error of the most recent load, if it failed.
func (m *Manager) LastLoadError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoadError
}

// Commit returns the git commit plans were last loaded from, or nil.
func (m *Manager) Commit() *CommitInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit
}

func (m *Manager) observe(count int, err error) {
	if m.observer != nil {
		m.observer(count, err)
	}
}
