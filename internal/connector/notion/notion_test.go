package notion

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

func TestVersionHeaderOnEveryRequest(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("Notion-Version")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, ok := c.Handler("list_all_users")
	require.True(t, ok)

	_, err := handler(context.Background(), &connector.Invocation{Token: "secret_test"})
	require.NoError(t, err)
	assert.Equal(t, "2022-06-28", gotVersion)
}

func TestSearchPagesPostsQuery(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/search", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("search_pages")

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "secret_test",
		Args:  map[string]any{"query": "roadmap", "page_size": float64(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "roadmap", gotBody["query"])
	assert.Equal(t, float64(5), gotBody["page_size"])
}

func TestCreatePageBuildsTitleProperty(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/pages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "page-1"})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("create_page")

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "secret_test",
		Args:  map[string]any{"parent_page_id": "abc123", "title": "Q3 Plan"},
	})
	require.NoError(t, err)

	parent := gotBody["parent"].(map[string]any)
	assert.Equal(t, "abc123", parent["page_id"])

	title := gotBody["properties"].(map[string]any)["title"].(map[string]any)["title"].([]any)
	text := title[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "Q3 Plan", text["content"])
}

func TestDescriptorHasNoRefreshSemantics(t *testing.T) {
	d := New().Descriptor()
	assert.Equal(t, "notion", d.Name)
	assert.Equal(t, connector.AuthOAuth, d.AuthKind)
	assert.False(t, d.ReusesRefreshToken)
	assert.False(t, d.UsePKCE)
	assert.NotEmpty(t, d.Endpoints.TokenURL)
}
