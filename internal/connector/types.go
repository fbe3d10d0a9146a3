// Package connector defines the tool/resource surface each provider
// integration implements and the dispatch layer that routes invocations.
package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gumcp/gumcp-go/internal/oauth"
)

// AuthKind distinguishes how a provider authenticates.
type AuthKind string

const (
	AuthOAuth  AuthKind = "oauth"
	AuthAPIKey AuthKind = "api_key"
)

// Descriptor is the static declaration of one provider integration.
type Descriptor struct {
	Name     string
	AuthKind AuthKind

	// OAuth endpoints; empty for API-key providers
	Endpoints oauth.Endpoints

	// Scopes requested during interactive auth
	Scopes []string

	// UsePKCE enables the RFC 7636 code challenge during authorization
	UsePKCE bool

	// ReusesRefreshToken declares the provider omits refresh_token on
	// renewal and the prior one must be carried forward
	ReusesRefreshToken bool
}

// Tool is a named, schema-described operation an agent can invoke.
type Tool struct {
	Name           string
	Description    string
	RequiredScopes []string

	// Parameters describes the tool's input schema, advertised over MCP.
	Parameters []Param
}

// ParamType enumerates the JSON schema types tools declare.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Param is one input parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Resource is a named, listable/readable entity type exposed read-side.
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// Invocation is the ephemeral per-call state a handler executes with. It
// exists only for the duration of one call and is owned by the handler.
type Invocation struct {
	UserID string
	Token  string
	Args   map[string]any
}

// String returns a string argument, or fallback when absent.
func (inv *Invocation) String(name, fallback string) string {
	if v, ok := inv.Args[name].(string); ok {
		return v
	}
	return fallback
}

// Int returns a numeric argument as int, or fallback when absent. JSON
// decoding hands numbers over as float64.
func (inv *Invocation) Int(name string, fallback int) int {
	switch v := inv.Args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// Bool returns a boolean argument, or fallback when absent.
func (inv *Invocation) Bool(name string, fallback bool) bool {
	if v, ok := inv.Args[name].(bool); ok {
		return v
	}
	return fallback
}

// JSONObject returns a string argument parsed as a JSON object, for tools
// that accept free-form structured input (e.g. record fields).
func (inv *Invocation) JSONObject(name string) (map[string]any, error) {
	raw, ok := inv.Args[name].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("argument %q must be a JSON object string", name)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("argument %q is not valid JSON: %w", name, err)
	}
	return obj, nil
}

// Handler executes one tool call: a single (or small bounded sequence of)
// provider API call(s), returning a normalized result.
type Handler func(ctx context.Context, inv *Invocation) (any, error)

// Connector is one provider-specific integration exposing tools/resources.
type Connector interface {
	Descriptor() Descriptor
	Tools() []Tool
	Handler(tool string) (Handler, bool)
	Resources() []Resource
}

// ResourceReader is implemented by connectors that expose readable
// resources.
type ResourceReader interface {
	ReadResource(ctx context.Context, inv *Invocation, uri string) (string, error)
}
