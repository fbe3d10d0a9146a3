package airtable

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

func TestDescriptorRequiresPKCE(t *testing.T) {
	d := New().Descriptor()
	assert.Equal(t, "airtable", d.Name)
	assert.True(t, d.UsePKCE)
	assert.Contains(t, d.Scopes, "data.records:read")
	assert.Contains(t, d.Scopes, "schema.bases:read")
}

func TestReadRecordsBuildsPathAndQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, ok := c.Handler("read_records")
	require.True(t, ok)

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "oaat-test",
		Args: map[string]any{
			"base_id":     "appXYZ",
			"table_id":    "Tasks",
			"max_records": float64(5),
			"view":        "Grid view",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/v0/appXYZ/Tasks", gotPath)
	assert.Equal(t, []string{"5"}, gotQuery["maxRecords"])
	assert.Equal(t, []string{"Grid view"}, gotQuery["view"])
}

func TestCreateRecordsWrapsFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v0/appXYZ/Tasks", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"records": []any{map[string]any{"id": "rec1"}}})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("create_records")

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "oaat-test",
		Args: map[string]any{
			"base_id":  "appXYZ",
			"table_id": "Tasks",
			"fields":   `{"Name": "Ship release", "Done": false}`,
		},
	})
	require.NoError(t, err)

	records := gotBody["records"].([]any)
	require.Len(t, records, 1)
	fields := records[0].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "Ship release", fields["Name"])
	assert.Equal(t, false, fields["Done"])
}

func TestCreateRecordsRejectsMalformedFields(t *testing.T) {
	c := New()
	handler, _ := c.Handler("create_records")

	_, err := handler(context.Background(), &connector.Invocation{
		Token: "oaat-test",
		Args: map[string]any{
			"base_id":  "appXYZ",
			"table_id": "Tasks",
			"fields":   "{not json",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fields")
}

func TestUpdateRecordsPatchesRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v0/appXYZ/Tasks/rec42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "rec42"})
	}))
	defer srv.Close()

	c := New(connector.WithBaseURL(srv.URL))
	handler, _ := c.Handler("update_records")

	result, err := handler(context.Background(), &connector.Invocation{
		Token: "oaat-test",
		Args: map[string]any{
			"base_id":   "appXYZ",
			"table_id":  "Tasks",
			"record_id": "rec42",
			"fields":    `{"Done": true}`,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "rec42", result.(map[string]any)["id"])
}
