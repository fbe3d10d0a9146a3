package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const TypeEnv = "env"

// EnvProvider resolves secrets from process environment variables. Read-only.
type EnvProvider struct{}

// NewEnvProvider creates the env provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) CanResolve(secretType string) bool {
	return secretType == TypeEnv
}

func (p *EnvProvider) Resolve(_ context.Context, ref Ref) (string, error) {
	if !p.CanResolve(ref.Type) {
		return "", fmt.Errorf("env provider cannot resolve secret type: %s", ref.Type)
	}
	value := os.Getenv(ref.Name)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not found or empty", ref.Name)
	}
	return value, nil
}

func (p *EnvProvider) Store(context.Context, Ref, string) error {
	return fmt.Errorf("env provider does not support storing secrets")
}

func (p *EnvProvider) Delete(context.Context, Ref) error {
	return fmt.Errorf("env provider does not support deleting secrets")
}

// List returns environment variables whose names suggest credentials.
func (p *EnvProvider) List(context.Context) ([]Ref, error) {
	var refs []Ref
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || pair[1] == "" {
			continue
		}
		if looksLikeSecretName(pair[0]) {
			refs = append(refs, Ref{
				Type:     TypeEnv,
				Name:     pair[0],
				Original: fmt.Sprintf("${env:%s}", pair[0]),
			})
		}
	}
	return refs, nil
}

func (p *EnvProvider) IsAvailable() bool {
	return true
}

func looksLikeSecretName(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range []string{"secret", "token", "password", "api_key", "apikey", "credential", "client_id"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
