// Package slack exposes the Slack Web API as connector tools and its
// conversations as readable resources.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gumcp/gumcp-go/internal/connector"
	"github.com/gumcp/gumcp-go/internal/oauth"
)

const (
	providerName = "slack"
	apiBaseURL   = "https://slack.com/api"
)

// Connector is the Slack provider integration.
type Connector struct {
	rest *connector.RESTClient
}

// New creates the Slack connector.
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
			AuthURL:  "https://slack.com/oauth/v2/authorize",
			TokenURL: "https://slack.com/api/oauth.v2.access",
		},
		Scopes: []string{
			"channels:history",
			"channels:manage",
			"channels:read",
			"chat:write",
			"groups:read",
			"pins:read",
			"pins:write",
			"reactions:write",
			"users:read",
		},
		// Slack omits refresh_token on rotation-less renewals; the prior
		// one stays valid
		ReusesRefreshToken: true,
	}
}

func (c *Connector) Tools() []connector.Tool {
	return []connector.Tool{
		{
			Name:           "send_message",
			Description:    "Send a message to a Slack channel",
			RequiredScopes: []string{"chat:write"},
			Parameters: []connector.Param{
				{Name: "channel", Type: connector.ParamString, Description: "Channel ID or name", Required: true},
				{Name: "text", Type: connector.ParamString, Description: "Message text", Required: true},
			},
		},
		{
			Name:           "read_messages",
			Description:    "Read recent messages from a channel",
			RequiredScopes: []string{"channels:history"},
			Parameters: []connector.Param{
				{Name: "channel", Type: connector.ParamString, Description: "Channel ID", Required: true},
				{Name: "limit", Type: connector.ParamNumber, Description: "Number of messages (default 20)"},
			},
		},
		{
			Name:           "create_channel",
			Description:    "Create a new public or private channel",
			RequiredScopes: []string{"channels:manage"},
			Parameters: []connector.Param{
				{Name: "name", Type: connector.ParamString, Description: "Channel name", Required: true},
				{Name: "is_private", Type: connector.ParamBoolean, Description: "Create as private channel"},
			},
		},
		{
			Name:           "pin_message",
			Description:    "Pin a message in a channel",
			RequiredScopes: []string{"pins:write"},
			Parameters: []connector.Param{
				{Name: "channel", Type: connector.ParamString, Description: "Channel ID", Required: true},
				{Name: "timestamp", Type: connector.ParamString, Description: "Message timestamp", Required: true},
			},
		},
		{
			Name:           "react_to_message",
			Description:    "Add an emoji reaction to a message",
			RequiredScopes: []string{"reactions:write"},
			Parameters: []connector.Param{
				{Name: "channel", Type: connector.ParamString, Description: "Channel ID", Required: true},
				{Name: "timestamp", Type: connector.ParamString, Description: "Message timestamp", Required: true},
				{Name: "emoji", Type: connector.ParamString, Description: "Emoji name without colons", Required: true},
			},
		},
		{
			Name:           "get_user_presence",
			Description:    "Get a user's presence state",
			RequiredScopes: []string{"users:read"},
			Parameters: []connector.Param{
				{Name: "user", Type: connector.ParamString, Description: "User ID", Required: true},
			},
		},
	}
}

func (c *Connector) Handler(tool string) (connector.Handler, bool) {
	switch tool {
	case "send_message":
		return c.sendMessage, true
	case "read_messages":
		return c.readMessages, true
	case "create_channel":
		return c.createChannel, true
	case "pin_message":
		return c.pinMessage, true
	case "react_to_message":
		return c.reactToMessage, true
	case "get_user_presence":
		return c.getUserPresence, true
	}
	return nil, false
}

func (c *Connector) Resources() []connector.Resource {
	return []connector.Resource{
		{
			URI:         "slack://conversations",
			Name:        "conversations",
			Description: "Channels visible to the authenticated user",
			MIMEType:    "application/json",
		},
	}
}

// ReadResource lists conversations for the resource read-side.
func (c *Connector) ReadResource(ctx context.Context, inv *connector.Invocation, uri string) (string, error) {
	if uri != "slack://conversations" {
		return "", fmt.Errorf("unknown resource %q", uri)
	}

	query := url.Values{}
	query.Set("types", "public_channel,private_channel")
	query.Set("limit", "200")
	result, err := c.call(ctx, inv.Token, "conversations.list", query, nil)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Connector) sendMessage(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.call(ctx, inv.Token, "chat.postMessage", nil, map[string]any{
		"channel": inv.String("channel", ""),
		"text":    inv.String("text", ""),
	})
}

func (c *Connector) readMessages(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("channel", inv.String("channel", ""))
	query.Set("limit", fmt.Sprint(inv.Int("limit", 20)))
	return c.call(ctx, inv.Token, "conversations.history", query, nil)
}

func (c *Connector) createChannel(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.call(ctx, inv.Token, "conversations.create", nil, map[string]any{
		"name":       strings.ToLower(inv.String("name", "")),
		"is_private": inv.Bool("is_private", false),
	})
}

func (c *Connector) pinMessage(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.call(ctx, inv.Token, "pins.add", nil, map[string]any{
		"channel":   inv.String("channel", ""),
		"timestamp": inv.String("timestamp", ""),
	})
}

func (c *Connector) reactToMessage(ctx context.Context, inv *connector.Invocation) (any, error) {
	return c.call(ctx, inv.Token, "reactions.add", nil, map[string]any{
		"channel":   inv.String("channel", ""),
		"timestamp": inv.String("timestamp", ""),
		"name":      inv.String("emoji", ""),
	})
}

func (c *Connector) getUserPresence(ctx context.Context, inv *connector.Invocation) (any, error) {
	query := url.Values{}
	query.Set("user", inv.String("user", ""))
	return c.call(ctx, inv.Token, "users.getPresence", query, nil)
}

// call wraps the REST helper with Slack's error convention: the Web API
// returns 200 with ok=false on failure, so the body is inspected too.
func (c *Connector) call(ctx context.Context, token, method string, query url.Values, body any) (any, error) {
	var result any
	var err error
	if body != nil {
		result, err = c.rest.Post(ctx, token, "/"+method, body)
	} else {
		result, err = c.rest.Get(ctx, token, "/"+method, query)
	}
	if err != nil {
		return nil, err
	}

	if m, ok := result.(map[string]any); ok {
		if okField, present := m["ok"].(bool); present && !okField {
			detail, _ := m["error"].(string)
			return nil, &connector.ProviderError{
				Provider:   providerName,
				StatusCode: 200,
				Body:       fmt.Sprintf(`{"ok": false, "error": %q}`, detail),
			}
		}
	}
	return result, nil
}
