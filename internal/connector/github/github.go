// Package github exposes the GitHub REST API as connector tools.
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/oauth"
)

const (
	providerName = "github"
	apiBaseURL   = "https://api.github.com"
)

// Connector is the GitHub provider integration.
type Connector struct {
	rest *connector.RESTClient
}

// New creates the GitHub connector.
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
			AuthURL:  "https://github.com/login/oauth/authorize",
			TokenURL: "https://github.com/login/oauth/access_token",
		},
		Scopes: []string{"repo", "public_repo", "read:org", "user"},
	}
}

func (c *Connector) Tools() []connector.Tool {
	return []connector.Tool{
		{
			Name:        "search_repositories",
			Description: "Search for GitHub repositories by keyword",
			Parameters: []connector.Param{
				{Name: "query", Type: connector.ParamString, Description: "Search keywords and qualifiers", Required: true},
				{Name: "per_page", Type: connector.ParamNumber, Description: "Results per page (max 100)"},
			},
		},
		{
			Name:           "create_repository",
			Description:    "Create a new repository for the authenticated user",
			RequiredScopes: []string{"repo"},
			Parameters: []connector.Param{
				{Name: "name", Type: connector.ParamString, Description: "Repository name", Required: true},
				{Name: "description", Type: connector.ParamString, Description: "Repository description"},
				{Name: "private", Type: connector.ParamBoolean, Description: "Create as private repository"},
			},
		},
		{
			Name:        "list_issues",
			Description: "List issues in a repository",
			Parameters: []connector.Param{
				{Name: "repo", Type: connector.ParamString, Description: "Repository in owner/name form", Required: true},
				{Name: "state", Type: connector.ParamString, Description: "Issue state: open, closed or all"},
			},
		},
		{
			Name:           "create_issue",
			Description:    "Create an issue in a repository",
			RequiredScopes: []string{"repo"},
			Parameters: []connector.Param{
				{Name: "repo", Type: connector.ParamString, Description: "Repository in owner/name form", Required: true},
				{Name: "title", Type: connector.ParamString, Description: "Issue title", Required: true},
				{Name: "body", Type: connector.ParamString, Description: "Issue body"},
			},
		},
		{
			Name:           "add_comment_to_issue",
			Description:    "Add a comment to an existing issue",
			RequiredScopes: []string{"repo"},
			Parameters: []connector.Param{
				{Name: "repo", Type: connector.ParamString, Description: "Repository in owner/name form", Required: true},
				{Name: "issue_number", Type: connector.ParamNumber, Description: "Issue number", Required: true},
				{Name: "body", Type: connector.ParamString, Description: "Comment body", Required: true},
			},
		},
		{
			Name:        "list_pull_requests",
			Description: "List pull requests in a repository",
			Parameters: []connector.Param{
				{Name: "repo", Type: connector.ParamString, Description: "Repository in owner/name form", Required: true},
				{Name: "state", Type: connector.ParamString, Description: "PR state: open, closed or all"},
			},
		},
		{
			Name:        "get_contents",
			Description: "Get the contents of a file or directory in a repository",
			Parameters: []connector.Param{
				{Name: "repo", Type: connector.ParamString, Description: "Repository in owner/name form", Required: true},
				{Name: "path", Type: connector.ParamString, Description: "Path within the repository", Required: true},
			},
		},
		{
			Name:        "list_commits",
			Description: "List recent commits in a repository",
			Parameters: []connector.Param{
				{Name: "repo", Type: connector.ParamString, Description: "Repository in owner/name form", Required: true},
			},
		},
	}
}

func (c *Connector) Handler(tool string) (connector.Handler, bool) {
	switch tool {
	case "search_repositories":
		return c.searchRepositories, true
	case "create_repository":
		return c.createRepository, true
	case "list_issues":
		return c.listIssues, true
	case "create_issue":
		return c.createIssue, true
	case "add_comment_to_issue":
		return c.addCommentToIssue, true
	case "list_pull_requests":
		return c.listPullRequests, true
	case "get_contents":
		return c.getContents, true
	case "list_commits":
		return c.listCommits, true
	}
	return nil, false
}

func (c *Connector) Resources() []connector.Resource { return nil }

func (c *Connector) searchRepositories(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("q", inv.String("query", ""))
	query.Set("per_page", fmt.Sprint(inv.Int("per_page", 10)))
	return c.rest.Get(ctx, inv.Token, "/search/repositories", query)
}

func (c *Connector) createRepository(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Post(ctx, inv.Token, "/user/repos", map[string]any{
		"name":        inv.String("name", ""),
		"description": inv.String("description", ""),
		"private":     inv.Bool("private", false),
	})
}

func (c *Connector) listIssues(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("state", inv.String("state", "open"))
	return c.rest.Get(ctx, inv.Token, "/repos/"+inv.String("repo", "")+"/issues", query)
}

func (c *Connector) createIssue(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Post(ctx, inv.Token, "/repos/"+inv.String("repo", "")+"/issues", map[string]any{
		"title": inv.String("title", ""),
		"body":  inv.String("body", ""),
	})
}

func (c *Connector) addCommentToIssue(ctx context.Context, inv *connector.Invocation) (any, error) {
	path := fmt.Sprintf("/repos/%s/issues/%d/comments", inv.String("repo", ""), inv.Int("issue_number", 0))
	return c.rest.Post(ctx, inv.Token, path, map[string]any{
		"body": inv.String("body", ""),
	})
}

func (c *Connector) listPullRequests(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("state", inv.String("state", "open"))
	return c.rest.Get(ctx, inv.Token, "/repos/"+inv.String("repo", "")+"/pulls", query)
}

func (c *Connector) getContents(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/repos/"+inv.String("repo", "")+"/contents/"+inv.String("path", ""), nil)
}

func (c *Connector) listCommits(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.rest.Get(ctx, inv.Token, "/repos/"+inv.String("repo", "")+"/commits", nil)
}
