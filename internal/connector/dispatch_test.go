package connector

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/gumcp/gumcp-go/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnector is a minimal connector for dispatch tests.
type fakeConnector struct {
	name     string
	tools    []Tool
	handlers map[string]Handler
}

func (f *fakeConnector) Descriptor() Descriptor {
	return Descriptor{Name: f.name, AuthKind: AuthOAuth}
}

func (f *fakeConnector) Tools() []Tool { return f.tools }

func (f *fakeConnector) Handler(tool string) (Handler, bool) {
	h, ok := f.handlers[tool]
	return h, ok
}

func (f *fakeConnector) Resources() []Resource { return nil }

// fakeTokens is a TokenSource with canned results and call counters.
type fakeTokens struct {
	token      string
	record     *storage.CredentialRecord
	tokenCalls atomic.Int32
}

func (f *fakeTokens) AccessToken(_ context.Context, _, _ string) (string, error) {
	f.tokenCalls.Add(1)
	return f.token, nil
}

func (f *fakeTokens) Credential(_, _ string) (*storage.CredentialRecord, error) {
	return f.record, nil
}

func newTestDispatcher(t *testing.T, checkScopes bool, record *storage.CredentialRecord) (*Dispatcher, *fakeTokens, *atomic.Int32) {
	t.Helper()

	var networkCalls atomic.Int32
	c := &fakeConnector{
		name: "hubspot",
		tools: []Tool{
			{Name: "list_contacts", Description: "List CRM contacts"},
			{Name: "create_contact", Description: "Create a CRM contact", RequiredScopes: []string{"crm.objects.contacts.write"}},
		},
		handlers: map[string]Handler{
			"list_contacts": func(_ context.Context, _ *Invocation) (any, error) {
				networkCalls.Add(1)
				return map[string]any{"contacts": []any{}}, nil
			},
			"create_contact": func(_ context.Context, _ *Invocation) (any, error) {
				networkCalls.Add(1)
				return map[string]any{"id": "123"}, nil
			},
		},
	}

	registry := NewRegistry()
	require.NoError(t, registry.Register(c))

	tokens := &fakeTokens{token: "tok", record: record}
	d := NewDispatcher(registry, tokens, nil, WithScopeCheck(checkScopes))
	return d, tokens, &networkCalls
}

// invoke("unknown_tool_name", ...) always fails with ErrUnknownTool,
// regardless of provider state.
func TestDispatcher_UnknownTool(t *testing.T) {
	d, tokens, _ := newTestDispatcher(t, false, nil)

	_, err := d.Invoke(context.Background(), "hubspot", "unknown_tool_name", "u1", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Zero(t, tokens.tokenCalls.Load(), "no token resolution for unknown tools")
}

func TestDispatcher_UnknownProvider(t *testing.T) {
	d, _, _ := newTestDispatcher(t, false, nil)

	_, err := d.Invoke(context.Background(), "gitlab", "list_contacts", "u1", nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

// A credential missing a required scope fails with ScopeError without making
// a network call.
func TestDispatcher_MissingScope(t *testing.T) {
	record := &storage.CredentialRecord{
		Provider: "hubspot", UserID: "u1",
		AccessToken: "tok",
		Scopes:      []string{"crm.objects.contacts.read"},
	}
	d, tokens, networkCalls := newTestDispatcher(t, true, record)

	_, err := d.Invoke(context.Background(), "hubspot", "create_contact", "u1", nil)

	var scopeErr *ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "create_contact", scopeErr.Tool)
	assert.Equal(t, []string{"crm.objects.contacts.write"}, scopeErr.Missing)
	assert.Zero(t, networkCalls.Load(), "scope check must fail before any network call")
	assert.Zero(t, tokens.tokenCalls.Load())
}

func TestDispatcher_ScopeCheckPasses(t *testing.T) {
	record := &storage.CredentialRecord{
		Provider: "hubspot", UserID: "u1",
		AccessToken: "tok",
		Scopes:      []string{"crm.objects.contacts.write"},
	}
	d, _, networkCalls := newTestDispatcher(t, true, record)

	result, err := d.Invoke(context.Background(), "hubspot", "create_contact", "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "123"}, result)
	assert.Equal(t, int32(1), networkCalls.Load())
}

func TestDispatcher_ScopeCheckDisabled(t *testing.T) {
	record := &storage.CredentialRecord{
		Provider: "hubspot", UserID: "u1", AccessToken: "tok",
	}
	d, _, _ := newTestDispatcher(t, false, record)

	// No recorded scopes, but the check is disabled: the provider enforces
	// scopes server-side
	_, err := d.Invoke(context.Background(), "hubspot", "create_contact", "u1", nil)
	assert.NoError(t, err)
}

func TestDispatcher_APIKeyCredentialSkipsScopeCheck(t *testing.T) {
	record := &storage.CredentialRecord{
		Provider: "hubspot", UserID: "u1",
		AccessToken: "key", APIKey: true,
	}
	d, _, _ := newTestDispatcher(t, true, record)

	_, err := d.Invoke(context.Background(), "hubspot", "create_contact", "u1", nil)
	assert.NoError(t, err)
}

func TestDispatcher_HandlerReceivesToken(t *testing.T) {
	registry := NewRegistry()
	var gotToken string
	require.NoError(t, registry.Register(&fakeConnector{
		name:  "github",
		tools: []Tool{{Name: "whoami"}},
		handlers: map[string]Handler{
			"whoami": func(_ context.Context, inv *Invocation) (any, error) {
				gotToken = inv.Token
				return "ok", nil
			},
		},
	}))

	tokens := &fakeTokens{token: "gho_abc"}
	d := NewDispatcher(registry, tokens, nil)

	_, err := d.Invoke(context.Background(), "github", "whoami", "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", gotToken)
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	c := &fakeConnector{name: "slack"}
	require.NoError(t, registry.Register(c))
	assert.Error(t, registry.Register(c))
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeConnector{name: "slack"}))
	require.NoError(t, registry.Register(&fakeConnector{name: "github"}))

	assert.Equal(t, []string{"github", "slack"}, registry.Names())
}

func TestInvocation_ArgHelpers(t *testing.T) {
	inv := &Invocation{Args: map[string]any{
		"name":  "general",
		"limit": float64(25),
		"all":   true,
	}}

	assert.Equal(t, "general", inv.String("name", ""))
	assert.Equal(t, "fallback", inv.String("missing", "fallback"))
	assert.Equal(t, 25, inv.Int("limit", 10))
	assert.Equal(t, 10, inv.Int("missing", 10))
	assert.True(t, inv.Bool("all", false))
	assert.False(t, inv.Bool("missing", false))
}
