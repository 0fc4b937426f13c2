package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an environment provider. The variable of secret
// "openai-api-key" with prefix "ASSISTANT_SECRET_" is
// ASSISTANT_SECRET_OPENAI_API_KEY.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// GetSecret implements Provider.
func (p *EnvProvider) GetSecret(_ context.Context, name string) (string, error) {
	envVar := p.Variable(name)
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", ErrNotFound, envVar)
	}
	return value, nil
}

// Name implements Provider.
func (p *EnvProvider) Name() string {
	return "env"
}

// Variable returns the environment variable holding the named secret.
func (p *EnvProvider) Variable(name string) string {
	r := strings.NewReplacer("-", "_", ".", "_", "/", "_")
	return p.prefix + strings.ToUpper(r.Replace(name))
}
