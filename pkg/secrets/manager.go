package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// refPattern matches ${secret:name} references.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager resolves secrets from its providers in order and caches the
// values.
type Manager struct {
	providers []Provider
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewManager creates a manager. A nil logger uses slog.Default().
func NewManager(logger *slog.Logger, providers ...Provider) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		providers: providers,
		logger:    logger.With("component", "secrets"),
		cache:     make(map[string]string),
	}
}

// GetSecret returns the value from the first provider holding it.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secret name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if value, ok := m.cache[name]; ok {
		return value, nil
	}

	for _, p := range m.providers {
		value, err := p.GetSecret(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%s provider: %w", p.Name(), err)
		}
		m.logger.Debug("secret resolved", "name", redact(name), "provider", p.Name())
		m.cache[name] = value
		return value, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} reference in s. Text without
// references is returned unchanged. All failures are reported together.
func (m *Manager) Resolve(ctx context.Context, s string) (string, error) {
	if !IsReference(s) {
		return s, nil
	}

	var errs []error
	out := refPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := refPattern.FindStringSubmatch(match)[1]
		value, err := m.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})
	if len(errs) > 0 {
		return s, fmt.Errorf("failed to resolve secret references: %w", errors.Join(errs...))
	}
	return out, nil
}

// ResolveAll resolves each field in place. Fields are left untouched when
// any reference fails.
func (m *Manager) ResolveAll(ctx context.Context, fields map[string]*string) error {
	resolved := make(map[string]string, len(fields))
	var errs []error
	for key, ptr := range fields {
		value, err := m.Resolve(ctx, *ptr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		resolved[key] = value
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for key, value := range resolved {
		*fields[key] = value
	}
	return nil
}

// IsReference reports whether s contains a secret reference.
func IsReference(s string) bool {
	return strings.Contains(s, "${secret:") && refPattern.MatchString(s)
}

// redact shortens a secret name for logs.
func redact(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
