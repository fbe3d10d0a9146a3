// Package catalog assembles the built-in provider integrations and binds
// their OAuth descriptors to token refresh clients.
package catalog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/gumcp/gumcp-go/internal/auth"
	"github.com/gumcp/gumcp-go/internal/config"
	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/connector/airtable"
	"github.com/gumcp/gumcp-go/internal/connector/github"
	"github.com/gumcp/gumcp-go/internal/connector/hubspot"
	"github.com/gumcp/gumcp-go/internal/connector/notion"
	"github.com/gumcp/gumcp-go/internal/connector/slack"
	"github.com/gumcp/gumcp-go/internal/connector/stripe"
	"github.com/gumcp/gumcp-go/internal/oauth"
)

// NewRegistry returns a registry with every built-in provider registered.
func NewRegistry() (*connector.Registry, error) {
	registry := connector.NewRegistry()
	for _, c := range []connector.Connector{
		airtable.New(),
		github.New(),
		hubspot.New(),
		notion.New(),
		slack.New(),
		stripe.New(),
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Exchangers resolves per-provider OAuth exchange clients on demand. App
// config is read from disk on first use and held for the process lifetime.
type Exchangers struct {
	dataDir  string
	registry *connector.Registry
	resolve  config.SecretResolver
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]*oauth.Exchanger
}

// NewExchangers creates the exchanger resolver. resolve may be nil when no
// secret references appear in OAuth app config files.
func NewExchangers(dataDir string, registry *connector.Registry, resolve config.SecretResolver, logger *zap.Logger) *Exchangers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exchangers{
		dataDir:  dataDir,
		registry: registry,
		resolve:  resolve,
		logger:   logger,
		cache:    make(map[string]*oauth.Exchanger),
	}
}

// For returns the exchanger for an OAuth provider. API-key providers and
// unknown names fail.
func (x *Exchangers) For(provider string) (*oauth.Exchanger, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if e, ok := x.cache[provider]; ok {
		return e, nil
	}

	c, ok := x.registry.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", connector.ErrUnknownProvider, provider)
	}
	desc := c.Descriptor()
	if desc.AuthKind != connector.AuthOAuth {
		return nil, fmt.Errorf("provider %s does not use OAuth", provider)
	}

	app, err := config.LoadOAuthApp(x.dataDir, provider, x.resolve)
	if err != nil {
		return nil, err
	}

	opts := []oauth.ExchangerOption{oauth.WithLogger(x.logger)}
	if desc.ReusesRefreshToken {
		opts = append(opts, oauth.WithReuseRefreshToken())
	}

	e := oauth.NewExchanger(app, desc.Endpoints, opts...)
	x.cache[provider] = e
	return e, nil
}

// RefresherFor adapts the resolver to the session facade. Providers whose
// app config is missing or that have no OAuth lifecycle report ok=false, so
// an expired token surfaces as a re-auth requirement rather than an error
// from a doomed refresh attempt.
func (x *Exchangers) RefresherFor() auth.RefresherFor {
	return func(provider string) (auth.Refresher, bool) {
		e, err := x.For(provider)
		if err != nil {
			x.logger.Debug("no refresher available",
				zap.String("provider", provider),
				zap.Error(err))
			return nil, false
		}
		return e, true
	}
}
