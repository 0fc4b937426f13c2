package plans

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/config"
)

// createTestRepo creates a repository holding one plan file.
func createTestRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	commitFile(t, repo, dir, "plans/star.json", planJSON, "add star plan")
	return repo
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content, message string) {
	t.Helper()

	writeFile(t, dir, name, content)

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	_, err = worktree.Commit(message, &gogit.CommitOptions{
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

func testGitConfig(sourceDir, cloneDir string) *config.GitConfig {
	return &config.GitConfig{
		Enabled:    true,
		Repository: sourceDir,
		Branch:     "master",
		Path:       "plans",
		Auth:       config.GitAuthConfig{Type: "none"},
		Poll:       config.GitPollConfig{Timeout: 10 * time.Second},
		Clone:      config.GitCloneConfig{Depth: 0, LocalPath: cloneDir},
	}
}

func TestNewGitSource_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.GitConfig
	}{
		{"nil config", nil},
		{"empty repository", &config.GitConfig{Branch: "main"}},
		{"empty branch", &config.GitConfig{Repository: "https://example.com/plans.git"}},
		{"bad auth", &config.GitConfig{
			Repository: "https://example.com/plans.git",
			Branch:     "main",
			Auth:       config.GitAuthConfig{Type: "token"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGitSource(tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGitSource_CloneAndPull(t *testing.T) {
	sourceDir := t.TempDir()
	repo := createTestRepo(t, sourceDir)
	cloneDir := filepath.Join(t.TempDir(), "clone")

	source, err := NewGitSource(testGitConfig(sourceDir, cloneDir))
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	ctx := context.Background()
	if err := source.Clone(ctx); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	commit, err := source.CurrentCommit()
	if err != nil {
		t.Fatalf("failed to read commit: %v", err)
	}
	if commit.Author != "Test User" || commit.Branch != "master" {
		t.Errorf("unexpected commit info: %+v", commit)
	}
	if source.PlanPath() != filepath.Join(cloneDir, "plans") {
		t.Errorf("unexpected plan path %q", source.PlanPath())
	}

	result, err := source.Pull(ctx)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if result.HadChanges {
		t.Error("expected no changes on first pull")
	}

	commitFile(t, repo, sourceDir, "plans/care.yaml", planYAML, "add care plan")

	result, err = source.Pull(ctx)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if !result.HadChanges {
		t.Fatal("expected changes after new commit")
	}
	if len(result.ChangedFiles) != 1 || result.ChangedFiles[0] != "plans/care.yaml" {
		t.Errorf("unexpected changed files: %v", result.ChangedFiles)
	}

	// A second Clone opens the existing checkout.
	reopened, err := NewGitSource(testGitConfig(sourceDir, cloneDir))
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	if err := reopened.Clone(ctx); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
}

func TestManager_GitSource(t *testing.T) {
	sourceDir := t.TempDir()
	repo := createTestRepo(t, sourceDir)

	cfg := testPlansConfig("")
	cfg.Git = *testGitConfig(sourceDir, filepath.Join(t.TempDir(), "clone"))

	log := &reloadLog{}
	m, err := NewManager(cfg, nil, WithReloadObserver(log.observe))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if _, err := m.Get("star-comprehensive"); err != nil {
		t.Fatalf("expected star plan from git, got %v", err)
	}
	if m.Commit() == nil {
		t.Error("expected commit info after git load")
	}

	watcher := NewGitWatcher(m.git, time.Hour, m.loader.HasExtension, m.Reload, nil)

	commitFile(t, repo, sourceDir, "README.md", "# plans", "docs")
	reloaded, err := watcher.Poll(ctx)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if reloaded {
		t.Error("expected non-plan change to skip reload")
	}

	commitFile(t, repo, sourceDir, "plans/care.yaml", planYAML, "add care plan")
	reloaded, err = watcher.Poll(ctx)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if !reloaded {
		t.Fatal("expected plan change to reload")
	}
	if _, err := m.Get("care-supreme"); err != nil {
		t.Errorf("expected care plan after reload, got %v", err)
	}
	if len(log.counts) != 2 {
		t.Errorf("expected 2 observations, got %v", log.counts)
	}
}

func TestGitWatcher_StartStop(t *testing.T) {
	sourceDir := t.TempDir()
	createTestRepo(t, sourceDir)

	source, err := NewGitSource(testGitConfig(sourceDir, filepath.Join(t.TempDir(), "clone")))
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	if err := source.Clone(context.Background()); err != nil {
		t.Fatalf("clone failed: %v", err)
	}

	w := NewGitWatcher(source, 10*time.Millisecond, nil, func() error { return nil }, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error on second start")
	}
	time.Sleep(30 * time.Millisecond)
	w.Stop()
	w.Stop()

	zero := NewGitWatcher(source, 0, nil, func() error { return nil }, nil)
	if err := zero.Start(context.Background()); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestNewAuthProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.GitAuthConfig
		wantType string
		wantErr  bool
	}{
		{"none", &config.GitAuthConfig{Type: "none"}, "none", false},
		{"empty", &config.GitAuthConfig{}, "none", false},
		{"token", &config.GitAuthConfig{Type: "token", Token: "ghp_x"}, "token", false},
		{"token missing", &config.GitAuthConfig{Type: "token"}, "", true},
		{"ssh", &config.GitAuthConfig{Type: "ssh", SSHKeyPath: "/tmp/key"}, "ssh", false},
		{"ssh missing", &config.GitAuthConfig{Type: "ssh"}, "", true},
		{"unknown", &config.GitAuthConfig{Type: "kerberos"}, "", true},
		{"nil", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAuthProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Type() != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, p.Type())
			}
		})
	}
}

func TestSSHAuth_RejectsOpenPermissions(t *testing.T) {
	key := writeFile(t, t.TempDir(), "id_rsa", "not a key")

	_, err := NewSSHAuth(key, "").GetAuth()
	if err == nil {
		t.Fatal("expected error for 0644 key file")
	}

	if _, err := NewSSHAuth("", "").GetAuth(); err == nil {
		t.Error("expected error for empty key path")
	}
}

func TestTokenAuth_GetAuth(t *testing.T) {
	auth, err := NewTokenAuth("ghp_secret").GetAuth()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth == nil {
		t.Fatal("expected auth method")
	}
	if _, err := NewTokenAuth("").GetAuth(); err == nil {
		t.Error("expected error for empty token")
	}
}
