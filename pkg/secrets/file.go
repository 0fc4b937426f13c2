package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider reads each secret from a file named after it in a directory.
// Files readable or writable by group or others are rejected.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a file provider for dir, which must exist.
func NewFileProvider(dir string) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets directory: %w", err)
	}
	return &FileProvider{dir: abs}, nil
}

// GetSecret implements Provider. Surrounding whitespace, including the
// trailing newline most editors add, is trimmed.
func (p *FileProvider) GetSecret(_ context.Context, name string) (string, error) {
	path := filepath.Join(p.dir, name)
	if filepath.Dir(path) != p.dir {
		return "", fmt.Errorf("invalid secret name %q", name)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: no file %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("secret %q is a directory", name)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		return "", fmt.Errorf("secret file %s has permissions %04o, expected 0600 or 0400", name, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("secret file %s is empty", name)
	}
	return value, nil
}

// Name implements Provider.
func (p *FileProvider) Name() string {
	return "file"
}
