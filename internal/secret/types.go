// Package secret resolves ${keyring:NAME} and ${env:NAME} references found
// in configuration values, backed by the OS keyring and the process
// environment.
package secret

import (
	"context"
)

// Ref is a parsed reference to one secret.
type Ref struct {
	Type     string // keyring or env
	Name     string // keyring alias or environment variable name
	Original string // the reference string as written
}

// Provider resolves one secret type.
type Provider interface {
	CanResolve(secretType string) bool
	Resolve(ctx context.Context, ref Ref) (string, error)

	// Store and Delete are optional; providers without write support
	// return an error
	Store(ctx context.Context, ref Ref, value string) error
	Delete(ctx context.Context, ref Ref) error

	List(ctx context.Context) ([]Ref, error)
	IsAvailable() bool
}

// Resolver dispatches secret references to registered providers.
type Resolver struct {
	providers map[string]Provider
}
