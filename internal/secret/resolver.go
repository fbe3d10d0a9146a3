package secret

import (
	"context"
	"fmt"

	"github.com/gumcp/gumcp-go/internal/config"
)

// NewResolver creates a resolver with the keyring and env providers
// registered.
func NewResolver() *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
	}
	r.RegisterProvider(TypeEnv, NewEnvProvider())
	r.RegisterProvider(TypeKeyring, NewKeyringProvider())
	return r
}

// RegisterProvider registers a provider for a secret type.
func (r *Resolver) RegisterProvider(secretType string, provider Provider) {
	r.providers[secretType] = provider
}

// Resolve resolves one secret reference.
func (r *Resolver) Resolve(ctx context.Context, ref Ref) (string, error) {
	provider, err := r.providerFor(ref.Type)
	if err != nil {
		return "", err
	}
	return provider.Resolve(ctx, ref)
}

// Store writes a secret through the provider for its type.
func (r *Resolver) Store(ctx context.Context, ref Ref, value string) error {
	provider, err := r.providerFor(ref.Type)
	if err != nil {
		return err
	}
	return provider.Store(ctx, ref, value)
}

// Delete removes a secret through the provider for its type.
func (r *Resolver) Delete(ctx context.Context, ref Ref) error {
	provider, err := r.providerFor(ref.Type)
	if err != nil {
		return err
	}
	return provider.Delete(ctx, ref)
}

// ListAll lists secret references across all available providers.
func (r *Resolver) ListAll(ctx context.Context) ([]Ref, error) {
	var all []Ref
	for _, provider := range r.providers {
		if !provider.IsAvailable() {
			continue
		}
		refs, err := provider.List(ctx)
		if err != nil {
			continue
		}
		all = append(all, refs...)
	}
	return all, nil
}

// ConfigResolver adapts the resolver to the config loader's callback shape.
func (r *Resolver) ConfigResolver() config.SecretResolver {
	return func(value string) (string, error) {
		return r.Expand(context.Background(), value)
	}
}

func (r *Resolver) providerFor(secretType string) (Provider, error) {
	provider, exists := r.providers[secretType]
	if !exists {
		return nil, fmt.Errorf("no provider for secret type: %s", secretType)
	}
	if !provider.IsAvailable() {
		return nil, fmt.Errorf("provider for %s is not available on this system", secretType)
	}
	return provider, nil
}
