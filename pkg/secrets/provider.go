package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a provider that does not hold a secret.
var ErrNotFound = errors.New("secret not found")

// Provider retrieves secrets from one backend.
type Provider interface {
	// GetSecret returns the secret value, or an error matching ErrNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// Name identifies the backend in logs and errors.
	Name() string
}
