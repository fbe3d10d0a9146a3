package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "local", cfg.UserID)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.True(t, cfg.CheckScopes)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_BadTransport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport = "websocket"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport")
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gumcp_config.json")
	content := `{
		"listen": ":9090",
		"connector": "slack",
		"user_id": "u42",
		"check_scopes": false
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, loadConfigFile(path, cfg))

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "slack", cfg.Connector)
	assert.Equal(t, "u42", cfg.UserID)
	assert.False(t, cfg.CheckScopes)
	// Unset values keep defaults
	assert.Equal(t, "stdio", cfg.Transport)
}

func TestLoadConfigFile_ToolTimeout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gumcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tool_timeout": "90s"}`), 0600))

	cfg := DefaultConfig()
	require.NoError(t, loadConfigFile(path, cfg))
	assert.Equal(t, 90*time.Second, cfg.ToolTimeout)

	require.NoError(t, os.WriteFile(path, []byte(`{"tool_timeout": "soon"}`), 0600))
	require.Error(t, loadConfigFile(path, DefaultConfig()))
}

func TestLoadOAuthApp(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"client_id": "cid",
		"client_secret": "csec",
		"redirect_uri": "http://localhost:8080",
		"custom_subdomain": "acme"
	}`
	path := OAuthAppPath(dir, "zendesk")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	app, err := LoadOAuthApp(dir, "zendesk", nil)
	require.NoError(t, err)

	assert.Equal(t, "cid", app.ClientID)
	assert.Equal(t, "csec", app.ClientSecret)
	assert.Equal(t, "http://localhost:8080", app.RedirectURI)
	assert.Equal(t, "acme", app.Extra(ExtraCustomSubdomain))
}

func TestLoadOAuthApp_Missing(t *testing.T) {
	_, err := LoadOAuthApp(t.TempDir(), "github", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuth config not found")
}

func TestLoadOAuthApp_ResolvesSecrets(t *testing.T) {
	dir := t.TempDir()
	content := `{"client_id": "cid", "client_secret": "${keyring:github_secret}"}`
	path := OAuthAppPath(dir, "github")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	resolve := func(value string) (string, error) {
		if value == "${keyring:github_secret}" {
			return "resolved-secret", nil
		}
		return value, nil
	}

	app, err := LoadOAuthApp(dir, "github", resolve)
	require.NoError(t, err)
	assert.Equal(t, "resolved-secret", app.ClientSecret)
}

func TestLoadOAuthApp_MissingCredentials(t *testing.T) {
	dir := t.TempDir()
	path := OAuthAppPath(dir, "github")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(`{"client_id": "cid"}`), 0600))

	_, err := LoadOAuthApp(dir, "github", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing OAuth credentials")
}

func TestSaveOAuthApp_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	app := &OAuthApp{
		ClientID:     "cid",
		ClientSecret: "csec",
		RedirectURI:  "http://localhost:8080",
		Extras:       map[string]string{ExtraLoginDomain: "login.salesforce.com"},
	}

	require.NoError(t, SaveOAuthApp(dir, "salesforce", app))

	got, err := LoadOAuthApp(dir, "salesforce", nil)
	require.NoError(t, err)
	assert.Equal(t, app.ClientID, got.ClientID)
	assert.Equal(t, "login.salesforce.com", got.Extra(ExtraLoginDomain))
}
