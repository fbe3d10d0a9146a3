package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gumcp/gumcp-go/internal/config"
	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/storage"
)

type staticConnector struct {
	name  string
	tools []connector.Tool
}

func (s *staticConnector) Descriptor() connector.Descriptor {
	return connector.Descriptor{Name: s.name, AuthKind: connector.AuthOAuth, Scopes: []string{"read"}}
}
func (s *staticConnector) Tools() []connector.Tool { return s.tools }
func (s *staticConnector) Handler(tool string) (connector.Handler, bool) {
	for _, t := range s.tools {
		if t.Name == tool {
			return func(context.Context, *connector.Invocation) (any, error) {
				return map[string]any{"ok": true}, nil
			}, true
		}
	}
	return nil, false
}
func (s *staticConnector) Resources() []connector.Resource { return nil }

type staticTokens struct{}

func (staticTokens) AccessToken(context.Context, string, string) (string, error) {
	return "token", nil
}
func (staticTokens) Credential(provider, userID string) (*storage.CredentialRecord, error) {
	return &storage.CredentialRecord{Provider: provider, UserID: userID, AccessToken: "token"}, nil
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	registry := connector.NewRegistry()
	require.NoError(t, registry.Register(&staticConnector{
		name: "alpha",
		tools: []connector.Tool{
			{Name: "list_items", Description: "List items"},
			{Name: "create_item", Description: "Create an item"},
		},
	}))
	require.NoError(t, registry.Register(&staticConnector{
		name:  "beta",
		tools: []connector.Tool{{Name: "ping", Description: "Ping"}},
	}))

	dispatcher := connector.NewDispatcher(registry, staticTokens{}, zap.NewNop())
	mcpSrv, err := NewMCPServer(cfg, registry, dispatcher, staticTokens{}, zap.NewNop())
	require.NoError(t, err)

	return New(cfg, mcpSrv, registry, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, config.DefaultConfig())

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConnectorListing(t *testing.T) {
	s := newTestServer(t, config.DefaultConfig())

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/connectors", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Connectors []struct {
			Name     string   `json:"name"`
			AuthKind string   `json:"auth_kind"`
			Tools    []string `json:"tools"`
		} `json:"connectors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	require.Len(t, payload.Connectors, 2)
	assert.Equal(t, "alpha", payload.Connectors[0].Name)
	assert.Equal(t, "oauth", payload.Connectors[0].AuthKind)
	assert.Equal(t, []string{"list_items", "create_item"}, payload.Connectors[0].Tools)
	assert.Equal(t, "beta", payload.Connectors[1].Name)
}

func TestMetricsEndpointServes(t *testing.T) {
	s := newTestServer(t, config.DefaultConfig())

	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownConnectorSelectionFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Connector = "nope"

	registry := connector.NewRegistry()
	dispatcher := connector.NewDispatcher(registry, staticTokens{}, zap.NewNop())

	_, err := NewMCPServer(cfg, registry, dispatcher, staticTokens{}, zap.NewNop())
	assert.ErrorIs(t, err, connector.ErrUnknownProvider)
}

func TestSingleConnectorSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Connector = "alpha"
	s := newTestServer(t, cfg)
	require.NotNil(t, s.mcp.MCP())
}
