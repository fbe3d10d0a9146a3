package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumcp/gumcp-go/internal/connector"
)

func writeOAuthApp(t *testing.T, dataDir, provider, body string) {
	t.Helper()
	dir := filepath.Join(dataDir, "oauth")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, provider+".json"), []byte(body), 0o600))
}

func TestRegistryContainsAllProviders(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"airtable", "github", "hubspot", "notion", "slack", "stripe"}, registry.Names())

	for _, name := range registry.Names() {
		c, ok := registry.Get(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Descriptor().Name)
	}
}

func TestExchangerForOAuthProvider(t *testing.T) {
	dataDir := t.TempDir()
	writeOAuthApp(t, dataDir, "github", `{
		"client_id": "cid",
		"client_secret": "secret",
		"redirect_uri": "http://localhost:8080/callback"
	}`)

	registry, err := NewRegistry()
	require.NoError(t, err)
	exchangers := NewExchangers(dataDir, registry, nil, nil)

	e, err := exchangers.For("github")
	require.NoError(t, err)
	require.NotNil(t, e)

	// Same instance on repeat lookups
	again, err := exchangers.For("github")
	require.NoError(t, err)
	assert.Same(t, e, again)
}

func TestExchangerCarriesRefreshReuseDeclaration(t *testing.T) {
	dataDir := t.TempDir()
	app := `{"client_id": "cid", "client_secret": "secret"}`
	writeOAuthApp(t, dataDir, "slack", app)
	writeOAuthApp(t, dataDir, "hubspot", app)
	writeOAuthApp(t, dataDir, "github", app)

	registry, err := NewRegistry()
	require.NoError(t, err)
	exchangers := NewExchangers(dataDir, registry, nil, nil)

	// Slack and HubSpot omit refresh_token on renewal; GitHub rotates
	for _, provider := range []string{"slack", "hubspot"} {
		e, err := exchangers.For(provider)
		require.NoError(t, err)
		assert.True(t, e.ReusesRefreshToken(), provider)
	}
	e, err := exchangers.For("github")
	require.NoError(t, err)
	assert.False(t, e.ReusesRefreshToken())
}

func TestExchangerRejectsAPIKeyProvider(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	exchangers := NewExchangers(t.TempDir(), registry, nil, nil)

	_, err = exchangers.For("stripe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not use OAuth")

	_, err = exchangers.For("wat")
	assert.ErrorIs(t, err, connector.ErrUnknownProvider)
}

func TestRefresherForReportsAvailability(t *testing.T) {
	dataDir := t.TempDir()
	writeOAuthApp(t, dataDir, "slack", `{"client_id": "cid", "client_secret": "secret"}`)

	registry, err := NewRegistry()
	require.NoError(t, err)
	refresherFor := NewExchangers(dataDir, registry, nil, nil).RefresherFor()

	_, ok := refresherFor("slack")
	assert.True(t, ok)

	// Missing app config and API-key providers both report no refresher
	_, ok = refresherFor("github")
	assert.False(t, ok)
	_, ok = refresherFor("stripe")
	assert.False(t, ok)
}
