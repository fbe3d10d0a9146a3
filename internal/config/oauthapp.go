package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Recognized provider-specific extras in OAuth app config files.
const (
	ExtraCustomSubdomain = "custom_subdomain"
	ExtraLoginDomain     = "login_domain"
	ExtraQuickBooksEnv   = "quickbooks_environment"
)

// OAuthApp holds the operator-supplied OAuth application config for one
// provider. Read once at auth time; immutable at runtime.
type OAuthApp struct {
	ClientID     string            `json:"client_id"`
	ClientSecret string            `json:"client_secret"`
	RedirectURI  string            `json:"redirect_uri,omitempty"`
	Extras       map[string]string `json:"extras,omitempty"`
}

// SecretResolver resolves secret references (e.g. ${keyring:NAME}) found in
// OAuth app config values to their actual values.
type SecretResolver func(value string) (string, error)

// OAuthAppPath returns the expected config file location for a provider.
func OAuthAppPath(dataDir, provider string) string {
	return filepath.Join(dataDir, "oauth", provider+".json")
}

// LoadOAuthApp reads the OAuth app config for a provider from
// <dataDir>/oauth/<provider>.json. Secret references in client_id,
// client_secret and extras are resolved through resolve when non-nil.
func LoadOAuthApp(dataDir, provider string, resolve SecretResolver) (*OAuthApp, error) {
	path := OAuthAppPath(dataDir, provider)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("OAuth config not found for %s at %s", provider, path)
		}
		return nil, fmt.Errorf("failed to read OAuth config for %s: %w", provider, err)
	}

	app := &OAuthApp{}
	if err := json.Unmarshal(data, app); err != nil {
		return nil, fmt.Errorf("failed to parse OAuth config for %s: %w", provider, err)
	}

	// Provider extras may also appear as top-level keys, the way operators
	// coming from other tooling tend to write them
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		for _, key := range []string{ExtraCustomSubdomain, ExtraLoginDomain, ExtraQuickBooksEnv} {
			if v, ok := raw[key]; ok {
				var s string
				if err := json.Unmarshal(v, &s); err == nil {
					if app.Extras == nil {
						app.Extras = make(map[string]string)
					}
					app.Extras[key] = s
				}
			}
		}
	}

	if resolve != nil {
		if app.ClientID, err = resolve(app.ClientID); err != nil {
			return nil, fmt.Errorf("failed to resolve client_id for %s: %w", provider, err)
		}
		if app.ClientSecret, err = resolve(app.ClientSecret); err != nil {
			return nil, fmt.Errorf("failed to resolve client_secret for %s: %w", provider, err)
		}
		for k, v := range app.Extras {
			if app.Extras[k], err = resolve(v); err != nil {
				return nil, fmt.Errorf("failed to resolve extra %q for %s: %w", k, provider, err)
			}
		}
	}

	if app.ClientID == "" || app.ClientSecret == "" {
		return nil, fmt.Errorf("missing OAuth credentials for %s: client_id and client_secret are required", provider)
	}

	return app, nil
}

// SaveOAuthApp writes the OAuth app config for a provider, creating the
// oauth config directory if needed.
func SaveOAuthApp(dataDir, provider string, app *OAuthApp) error {
	path := OAuthAppPath(dataDir, provider)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create OAuth config directory: %w", err)
	}

	data, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize OAuth config for %s: %w", provider, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write OAuth config for %s: %w", provider, err)
	}
	return nil
}

// Extra returns a provider-specific extra value, or the empty string.
func (a *OAuthApp) Extra(key string) string {
	if a.Extras == nil {
		return ""
	}
	return a.Extras[key]
}
