package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/logs"
	"github.com/gumcp/gumcp-go/internal/oauth"
	"github.com/gumcp/gumcp-go/internal/storage"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider credentials",
		Long:  "Authenticate against providers, inspect stored credentials, and revoke them.",
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthStatusCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <provider>",
		Short: "Authenticate a provider and store the credential",
		Long: `Runs the provider's auth flow and stores the resulting credential.

OAuth providers open a browser for consent and capture the callback locally;
API-key providers prompt for the key on stdin. Credentials are stored per
user identity (--user, default "local").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]

			cfg, err := loadConfigWithFlags()
			if err != nil {
				return err
			}
			logger, err := logs.SetupCommandLogger(false, logLevel)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			rt, err := newRuntime(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			c, ok := rt.registry.Get(provider)
			if !ok {
				return fmt.Errorf("%w: %s (known: %s)",
					connector.ErrUnknownProvider, provider, strings.Join(rt.registry.Names(), ", "))
			}
			desc := c.Descriptor()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var record *storage.CredentialRecord
			switch desc.AuthKind {
			case connector.AuthAPIKey:
				record, err = loginAPIKey(provider, cfg.UserID)
			default:
				record, err = loginOAuth(ctx, rt, desc, cfg.UserID, logger)
			}
			if err != nil {
				return err
			}

			if err := rt.store.PutCredential(record); err != nil {
				return fmt.Errorf("failed to store credential: %w", err)
			}

			fmt.Printf("Authenticated %s as user %q\n", provider, cfg.UserID)
			if !record.ExpiresAt.IsZero() {
				fmt.Printf("Access token expires %s\n", record.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func loginAPIKey(provider, userID string) (*storage.CredentialRecord, error) {
	fmt.Printf("Enter API key for %s: ", provider)
	key, err := readPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read API key: %w", err)
	}
	if key == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}
	now := time.Now()
	return &storage.CredentialRecord{
		Provider:    provider,
		UserID:      userID,
		AccessToken: key,
		APIKey:      true,
		Created:     now,
		Updated:     now,
	}, nil
}

func loginOAuth(ctx context.Context, rt *runtime, desc connector.Descriptor, userID string, logger *zap.Logger) (*storage.CredentialRecord, error) {
	exchanger, err := rt.exchangers.For(desc.Name)
	if err != nil {
		return nil, fmt.Errorf("no OAuth app configured for %s: %w (create %s with client_id/client_secret)",
			desc.Name, err, "oauth/"+desc.Name+".json in the data directory")
	}

	token, err := oauth.Authorize(ctx, exchanger, desc.Scopes, desc.UsePKCE, logger)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	now := time.Now()
	return &storage.CredentialRecord{
		Provider:     desc.Name,
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.ExpiresAt,
		Scopes:       grantedScopes(desc, token),
		Created:      now,
		Updated:      now,
	}, nil
}

// grantedScopes picks the scope set to record on a fresh credential. Some
// providers (HubSpot, Notion) echo no scope field in the token response;
// recording the requested set keeps the scope precheck from rejecting a
// credential the user just authorized.
func grantedScopes(desc connector.Descriptor, token *oauth.Token) []string {
	if len(token.Scopes) > 0 {
		return token.Scopes
	}
	return desc.Scopes
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored credentials and their expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithFlags()
			if err != nil {
				return err
			}
			logger, err := logs.SetupCommandLogger(false, logLevel)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			rt, err := newRuntime(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			records, err := rt.store.ListCredentials()
			if err != nil {
				return fmt.Errorf("failed to list credentials: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No stored credentials. Run 'gumcp auth login <provider>' to authenticate.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tUSER\tKIND\tSTATUS\tSCOPES")
			for _, r := range records {
				kind := "oauth"
				if r.APIKey {
					kind = "api-key"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					r.Provider, r.UserID, kind, credentialStatus(r), strings.Join(r.Scopes, ","))
			}
			return w.Flush()
		},
	}
}

func credentialStatus(r *storage.CredentialRecord) string {
	if r.APIKey || r.ExpiresAt.IsZero() {
		return "valid"
	}
	if time.Now().After(r.ExpiresAt) {
		if r.RefreshToken != "" {
			return "expired (refreshable)"
		}
		return "expired"
	}
	return "valid until " + r.ExpiresAt.Format(time.RFC3339)
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <provider>",
		Short: "Delete the stored credential for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]

			cfg, err := loadConfigWithFlags()
			if err != nil {
				return err
			}
			logger, err := logs.SetupCommandLogger(false, logLevel)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			rt, err := newRuntime(cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.store.DeleteCredential(provider, cfg.UserID); err != nil {
				return fmt.Errorf("failed to delete credential: %w", err)
			}
			rt.session.Invalidate(provider, cfg.UserID)

			fmt.Printf("Removed credential for %s (user %q)\n", provider, cfg.UserID)
			return nil
		},
	}
}
