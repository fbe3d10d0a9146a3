// Package airtable exposes the Airtable API as connector tools. Airtable's
// OAuth flow mandates PKCE and rotates the refresh token on every grant.
package airtable

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/oauth"
)

const (
	providerName = "airtable"
	apiBaseURL   = "https://api.airtable.com"
)

// Connector is the Airtable provider integration.
type Connector struct {
	rest *connector.RESTClient
}

// New creates the Airtable connector.
func New(opts ...connector.RESTOption) *Connector {
	return &Connector{
		rest: connector.NewRESTClient(providerName, apiBaseURL, opts...),
	}
}

func (c *Connector) Descriptor() connector.Descriptor {
	return connector.Descriptor{
		Name:     providerName,
		AuthKind: connector.AuthOAuth,
		Endpoints: oauth.Endpoints{
			AuthURL:  "https://airtable.com/oauth2/v1/authorize",
			TokenURL: "https://airtable.com/oauth2/v1/token",
		},
		Scopes: []string{
			"data.records:read",
			"data.records:write",
			"schema.bases:read",
			"schema.bases:write",
		},
		UsePKCE: true,
	}
}

func (c *Connector) Tools() []connector.Tool {
	return []connector.Tool{
		{
			Name:           "list_bases",
			Description:    "List bases the token can access",
			RequiredScopes: []string{"schema.bases:read"},
		},
		{
			Name:           "list_tables",
			Description:    "List tables and their schema for a base",
			RequiredScopes: []string{"schema.bases:read"},
			Parameters: []connector.Param{
				{Name: "base_id", Type: connector.ParamString, Description: "Base ID (app...)", Required: true},
			},
		},
		{
			Name:           "read_records",
			Description:    "Read records from a table",
			RequiredScopes: []string{"data.records:read"},
			Parameters: []connector.Param{
				{Name: "base_id", Type: connector.ParamString, Description: "Base ID (app...)", Required: true},
				{Name: "table_id", Type: connector.ParamString, Description: "Table ID or name", Required: true},
				{Name: "max_records", Type: connector.ParamNumber, Description: "Maximum records to return (default 20)"},
				{Name: "view", Type: connector.ParamString, Description: "View to read from"},
			},
		},
		{
			Name:           "create_records",
			Description:    "Create a record in a table",
			RequiredScopes: []string{"data.records:write"},
			Parameters: []connector.Param{
				{Name: "base_id", Type: connector.ParamString, Description: "Base ID (app...)", Required: true},
				{Name: "table_id", Type: connector.ParamString, Description: "Table ID or name", Required: true},
				{Name: "fields", Type: connector.ParamString, Description: "Record fields as a JSON object", Required: true},
			},
		},
		{
			Name:           "update_records",
			Description:    "Update a record in a table",
			RequiredScopes: []string{"data.records:write"},
			Parameters: []connector.Param{
				{Name: "base_id", Type: connector.ParamString, Description: "Base ID (app...)", Required: true},
				{Name: "table_id", Type: connector.ParamString, Description: "Table ID or name", Required: true},
				{Name: "record_id", Type: connector.ParamString, Description: "Record ID (rec...)", Required: true},
				{Name: "fields", Type: connector.ParamString, Description: "Fields to update as a JSON object", Required: true},
			},
		},
	}
}

func (c *Connector) Handler(tool string) (connector.Handler, bool) {
	switch tool {
	case "list_bases":
		return c.listBases, true
	case "list_tables":
		return c.listTables, true
	case "read_records":
		return c.readRecords, true
	case "create_records":
		return c.createRecords, true
	case "update_records":
		return c.updateRecords, true
	}
	return nil, false
}

func (c *Connector) Resources() []connector.Resource { return nil }

func (c *Connector) listBases(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/v0/meta/bases", nil)
}

func (c *Connector) listTables(ctx context.Context, inv *connector.Invocation) (any, error) {
	path := fmt.Sprintf("/v0/meta/bases/%s/tables", inv.String("base_id", ""))
	return c.rest.Get(ctx, inv.Token, path, nil)
}

func (c *Connector) readRecords(ctx context.Context, inv *connector.Invocation) (any, error) {
	q := url.Values{"maxRecords": {strconv.Itoa(inv.Int("max_records", 20))}}
	if view := inv.String("view", ""); view != "" {
		q.Set("view", view)
	}
	path := fmt.Sprintf("/v0/%s/%s", inv.String("base_id", ""), url.PathEscape(inv.String("table_id", "")))
	return c.rest.Get(ctx, inv.Token, path, q)
}

func (c *Connector) createRecords(ctx context.Context, inv *connector.Invocation) (any, error) {
	fields, err := inv.JSONObject("fields")
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v0/%s/%s", inv.String("base_id", ""), url.PathEscape(inv.String("table_id", "")))
	return c.rest.Post(ctx, inv.Token, path, map[string]any{
		"records": []any{
			map[string]any{"fields": fields},
		},
	})
}

func (c *Connector) updateRecords(ctx context.Context, inv *connector.Invocation) (any, error) {
	fields, err := inv.JSONObject("fields")
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/v0/%s/%s/%s",
		inv.String("base_id", ""),
		url.PathEscape(inv.String("table_id", "")),
		inv.String("record_id", ""))
	return c.rest.Patch(ctx, inv.Token, path, map[string]any{"fields": fields})
}
