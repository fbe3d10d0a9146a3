// Package notion exposes the Notion API as connector tools.
package notion

import (
	"context"
	"fmt"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/oauth"
)

const (
	providerName = "notion"
	apiBaseURL   = "https://api.notion.com"

	// Pinned API version; Notion requires it on every request
	apiVersion = "2022-06-28"
)

// Connector is the Notion provider integration. Notion tokens have no
// expiry semantics: no refresh flow exists.
type Connector struct {
	rest *connector.RESTClient
}

// New creates the Notion connector.
func New(opts ...connector.RESTOption) *Connector {
	allOpts := append([]connector.RESTOption{
		connector.WithHeader("Notion-Version", apiVersion),
	}, opts...)
	return &Connector{
		rest: connector.NewRESTClient(providerName, apiBaseURL, allOpts...),
	}
}

func (c *Connector) Descriptor() connector.Descriptor {
	return connector.Descriptor{
		Name:     providerName,
		AuthKind: connector.AuthOAuth,
		Endpoints: oauth.Endpoints{
			AuthURL:  "https://api.notion.com/v1/oauth/authorize",
			TokenURL: "https://api.notion.com/v1/oauth/token",
		},
	}
}

func (c *Connector) Tools() []connector.Tool {
	return []connector.Tool{
		{
			Name:        "search_pages",
			Description: "Search pages and databases shared with the integration",
			Parameters: []connector.Param{
				{Name: "query", Type: connector.ParamString, Description: "Search text", Required: true},
				{Name: "page_size", Type: connector.ParamNumber, Description: "Results per page (default 10)"},
			},
		},
		{
			Name:        "get_page",
			Description: "Retrieve a page's properties",
			Parameters: []connector.Param{
				{Name: "page_id", Type: connector.ParamString, Description: "Page ID", Required: true},
			},
		},
		{
			Name:        "get_block_children",
			Description: "Retrieve the content blocks of a page or block",
			Parameters: []connector.Param{
				{Name: "block_id", Type: connector.ParamString, Description: "Page or block ID", Required: true},
			},
		},
		{
			Name:        "create_page",
			Description: "Create a page under a parent page",
			Parameters: []connector.Param{
				{Name: "parent_page_id", Type: connector.ParamString, Description: "Parent page ID", Required: true},
				{Name: "title", Type: connector.ParamString, Description: "Page title", Required: true},
			},
		},
		{
			Name:        "query_database",
			Description: "Query rows of a database",
			Parameters: []connector.Param{
				{Name: "database_id", Type: connector.ParamString, Description: "Database ID", Required: true},
				{Name: "page_size", Type: connector.ParamNumber, Description: "Results per page (default 25)"},
			},
		},
		{
			Name:        "list_all_users",
			Description: "List users in the workspace",
		},
	}
}

func (c *Connector) Handler(tool string) (connector.Handler, bool) {
	switch tool {
	case "search_pages":
		return c.searchPages, true
	case "get_page":
		return c.getPage, true
	case "get_block_children":
		return c.getBlockChildren, true
	case "create_page":
		return c.createPage, true
	case "query_database":
		return c.queryDatabase, true
	case "list_all_users":
		return c.listAllUsers, true
	}
	return nil, false
}

func (c *Connector) Resources() []connector.Resource { return nil }

func (c *Connector) searchPages(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Post(ctx, inv.Token, "/v1/search", map[string]any{
		"query":     inv.String("query", ""),
		"page_size": inv.Int("page_size", 10),
	})
}

func (c *Connector) getPage(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/v1/pages/"+inv.String("page_id", ""), nil)
}

func (c *Connector) getBlockChildren(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/v1/blocks/"+inv.String("block_id", "")+"/children", nil)
}

func (c *Connector) createPage(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Post(ctx, inv.Token, "/v1/pages", map[string]any{
		"parent": map[string]any{
			"page_id": inv.String("parent_page_id", ""),
		},
		"properties": map[string]any{
			"title": map[string]any{
				"title": []any{
					map[string]any{
						"text": map[string]any{"content": inv.String("title", "")},
					},
				},
			},
		},
	})
}

func (c *Connector) queryDatabase(ctx context.Context, inv *connector.Invocation) (any, error) {
	path := fmt.Sprintf("/v1/databases/%s/query", inv.String("database_id", ""))
	return c.rest.Post(ctx, inv.Token, path, map[string]any{
		"page_size": inv.Int("page_size", 25),
	})
}

func (c *Connector) listAllUsers(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/v1/users", nil)
}
