package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumcp/gumcp-go/internal/connector"
)

func TestSearchContactsBuildsFilterGroups(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"total": 1})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, ok := c.Handler("search_contacts")
	require.True(t, ok)

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "pat-test",
		Args:  map[string]any{"property": "email", "value": "ada@example.com"},
	})
	require.NoError(t, err)

	groups := gotBody["filterGroups"].([]any)
	require.Len(t, groups, 1)
	filter := groups[0].(map[string]any)["filters"].([]any)[0].(map[string]any)
	assert.Equal(t, "email", filter["propertyName"])
	assert.Equal(t, "EQ", filter["operator"])
	assert.Equal(t, "ada@example.com", filter["value"])
}

func TestUpdateContactPatchesOnlySetProperties(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.Equal(t, "/crm/v3/objects/contacts/501", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "501"})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("update_contact")

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "pat-test",
		Args:  map[string]any{"contact_id": "501", "lastname": "Lovelace"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	props := gotBody["properties"].(map[string]any)
	assert.Equal(t, "Lovelace", props["lastname"])
	assert.NotContains(t, props, "email")
	assert.NotContains(t, props, "firstname")
}

func TestRateLimitErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"category": "RATE_LIMITS"}`))
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("list_contacts")

	_, err := handler(context.Background(), &connector.Invocation{Token: "pat-test", Args: map[string]any{}})
	var provErr *connector.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "RATE_LIMITS")
}

func TestDescriptorScopesCoverToolRequirements(t *testing.T) {
	c := New()
	granted := make(map[string]bool)
	for _, s := range c.Descriptor().Scopes {
		granted[s] = true
	}
	for _, tool := range c.Tools() {
		require.NotEmpty(t, tool.RequiredScopes, "tool %s declares no scopes", tool.Name)
		for _, s := range tool.RequiredScopes {
			assert.True(t, granted[s], "tool %s requires scope %s not in descriptor", tool.Name, s)
		}
	}
}
