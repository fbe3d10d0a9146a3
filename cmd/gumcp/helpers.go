package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gumcp/gumcp-go/internal/auth"
	"github.com/gumcp/gumcp-go/internal/config"
	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/connector/catalog"
	"github.com/gumcp/gumcp-go/internal/secret"
	"github.com/gumcp/gumcp-go/internal/storage"
)

// loadConfigWithFlags loads configuration and applies command-line overrides.
func loadConfigWithFlags() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if connectorName != "" {
		cfg.Connector = connectorName
	}
	if transport != "" {
		cfg.Transport = transport
	}
	if userID != "" {
		cfg.UserID = userID
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime holds the assembled credential lifecycle shared by the server and
// the one-shot commands.
type runtime struct {
	store      *storage.BoltDB
	registry   *connector.Registry
	exchangers *catalog.Exchangers
	session    *auth.Session
	dispatcher *connector.Dispatcher
	secrets    *secret.Resolver
}

func newRuntime(cfg *config.Config, logger *zap.Logger) (*runtime, error) {
	store, err := storage.NewBoltDB(cfg.DataDir, logger.Sugar())
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	registry, err := catalog.NewRegistry()
	if err != nil {
		store.Close()
		return nil, err
	}

	secrets := secret.NewResolver()
	exchangers := catalog.NewExchangers(cfg.DataDir, registry, secrets.ConfigResolver(), logger)
	session := auth.NewSession(store, exchangers.RefresherFor(), logger)
	dispatcher := connector.NewDispatcher(registry, session, logger,
		connector.WithScopeCheck(cfg.CheckScopes),
		connector.WithActivitySink(store),
	)

	return &runtime{
		store:      store,
		registry:   registry,
		exchangers: exchangers,
		session:    session,
		dispatcher: dispatcher,
		secrets:    secrets,
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close credential store: %v\n", err)
	}
}

// readPassword reads a line without echo when attached to a terminal.
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}

	var line string
	if _, err := fmt.Scanln(&line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
