package stripe

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

func TestDescriptorUsesAPIKeyAuth(t *testing.T) {
	d := New().Descriptor()
	assert.Equal(t, "stripe", d.Name)
	assert.Equal(t, connector.AuthAPIKey, d.AuthKind)
	assert.Empty(t, d.Endpoints.TokenURL)
}

func TestCreateCustomerSendsFormEncodedBody(t *testing.T) {
	var gotContentType, gotEmail, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/customers", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotEmail = r.PostFormValue("email")
		gotName = r.PostFormValue("name")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "cus_123"})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, ok := c.Handler("create_customer")
	require.True(t, ok)

	result, err := handler(context.Background(), &connector.Invocation{
		Token: "sk_test_123",
		Args:  map[string]any{"email": "ada@example.com", "name": "Ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "ada@example.com", gotEmail)
	assert.Equal(t, "Ada", gotName)
	assert.Equal(t, "cus_123", result.(map[string]any)["id"])
}

func TestListChargesFiltersByCustomer(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges", r.URL.Path)
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("list_charges")

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "sk_test_123",
		Args:  map[string]any{"limit": float64(3), "customer_id": "cus_123"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, gotQuery["limit"])
	assert.Equal(t, []string{"cus_123"}, gotQuery["customer"])
}

func TestInvalidKeySurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("retrieve_balance")

	_, err := handler(context.Background(), &connector.Invocation{Token: "sk_bad"})
	var provErr *connector.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "stripe", provErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
}
