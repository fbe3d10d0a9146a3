package secret

import (
	"context"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName scopes keyring entries to this application
	ServiceName = "gumcp"

	TypeKeyring = "keyring"

	// registryKey tracks stored secret names; go-keyring has no native
	// list operation
	registryKey = "_gumcp_secret_registry"
)

// KeyringProvider stores secrets in the OS keyring (Keychain, Secret
// Service, Windows Credential Manager).
type KeyringProvider struct {
	serviceName string
}

// NewKeyringProvider creates the keyring provider.
func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{serviceName: ServiceName}
}

func (p *KeyringProvider) CanResolve(secretType string) bool {
	return secretType == TypeKeyring
}

func (p *KeyringProvider) Resolve(_ context.Context, ref Ref) (string, error) {
	if !p.CanResolve(ref.Type) {
		return "", fmt.Errorf("keyring provider cannot resolve secret type: %s", ref.Type)
	}
	value, err := keyring.Get(p.serviceName, ref.Name)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s from keyring: %w", ref.Name, err)
	}
	return value, nil
}

func (p *KeyringProvider) Store(_ context.Context, ref Ref, value string) error {
	if !p.CanResolve(ref.Type) {
		return fmt.Errorf("keyring provider cannot store secret type: %s", ref.Type)
	}
	if err := keyring.Set(p.serviceName, ref.Name, value); err != nil {
		return fmt.Errorf("failed to store secret %s in keyring: %w", ref.Name, err)
	}
	return p.addToRegistry(ref.Name)
}

func (p *KeyringProvider) Delete(_ context.Context, ref Ref) error {
	if !p.CanResolve(ref.Type) {
		return fmt.Errorf("keyring provider cannot delete secret type: %s", ref.Type)
	}
	if err := keyring.Delete(p.serviceName, ref.Name); err != nil {
		return fmt.Errorf("failed to delete secret %s from keyring: %w", ref.Name, err)
	}
	return p.removeFromRegistry(ref.Name)
}

func (p *KeyringProvider) List(_ context.Context) ([]Ref, error) {
	registry, err := keyring.Get(p.serviceName, registryKey)
	if err != nil {
		// No registry yet means nothing stored
		return []Ref{}, nil
	}

	var refs []Ref
	for _, name := range strings.Split(registry, "\n") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		refs = append(refs, Ref{
			Type:     TypeKeyring,
			Name:     name,
			Original: fmt.Sprintf("${keyring:%s}", name),
		})
	}
	return refs, nil
}

// IsAvailable probes the keyring with a throwaway entry. Headless Linux
// hosts commonly lack a Secret Service.
func (p *KeyringProvider) IsAvailable() bool {
	const probe = "_gumcp_availability_probe"
	if err := keyring.Set(p.serviceName, probe, "ok"); err != nil {
		return false
	}
	if _, err := keyring.Get(p.serviceName, probe); err != nil {
		return false
	}
	_ = keyring.Delete(p.serviceName, probe)
	return true
}

func (p *KeyringProvider) addToRegistry(name string) error {
	registry, err := keyring.Get(p.serviceName, registryKey)
	if err != nil {
		registry = ""
	}

	for _, existing := range strings.Split(registry, "\n") {
		if strings.TrimSpace(existing) == name {
			return nil
		}
	}

	if registry != "" {
		registry += "\n"
	}
	return keyring.Set(p.serviceName, registryKey, registry+name)
}

func (p *KeyringProvider) removeFromRegistry(name string) error {
	registry, err := keyring.Get(p.serviceName, registryKey)
	if err != nil {
		return nil
	}

	var kept []string
	for _, existing := range strings.Split(registry, "\n") {
		existing = strings.TrimSpace(existing)
		if existing != "" && existing != name {
			kept = append(kept, existing)
		}
	}
	return keyring.Set(p.serviceName, registryKey, strings.Join(kept, "\n"))
}
