package connector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTClient_Get(t *testing.T) {
	var gotAuth, gotAccept, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [1, 2]}`))
	}))
	defer srv.Close()

	c := NewRESTClient("github", srv.URL)

	query := url.Values{}
	query.Set("per_page", "2")
	result, err := c.Get(context.Background(), "tok", "/user/repos", query)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "/user/repos", gotPath)
	assert.Equal(t, "per_page=2", gotQuery)
	assert.Equal(t, map[string]any{"items": []any{float64(1), float64(2)}}, result)
}

func TestRESTClient_PostBody(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, jsonDecode(r, &gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "c1"}`))
	}))
	defer srv.Close()

	c := NewRESTClient("hubspot", srv.URL)

	result, err := c.Post(context.Background(), "tok", "/crm/v3/objects/contacts", map[string]any{
		"properties": map[string]any{"email": "a@b.co"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "a@b.co", gotBody["properties"].(map[string]any)["email"])
	assert.Equal(t, map[string]any{"id": "c1"}, result)
}

// Non-2xx responses become ProviderError with status and body verbatim.
func TestRESTClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "Validation Failed"}`))
	}))
	defer srv.Close()

	c := NewRESTClient("github", srv.URL)

	_, err := c.Post(context.Background(), "tok", "/repos", map[string]any{})
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "github", provErr.Provider)
	assert.Equal(t, http.StatusUnprocessableEntity, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "Validation Failed")
}

func TestRESTClient_StaticHeadersAndAuthScheme(t *testing.T) {
	var gotVersion, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("Notion-Version")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewRESTClient("notion", srv.URL,
		WithHeader("Notion-Version", "2022-06-28"),
		WithAuthScheme(func(token string) string { return "Bearer " + token }))

	_, err := c.Get(context.Background(), "secret", "/v1/users/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "2022-06-28", gotVersion)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestRESTClient_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewRESTClient("slack", srv.URL)

	result, err := c.Delete(context.Background(), "tok", "/pin")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": http.StatusNoContent}, result)
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
