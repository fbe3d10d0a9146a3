package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/gumcp/gumcp-go/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource resolves a currently valid access token and the credential it
// came from. Satisfied by the auth session facade.
type TokenSource interface {
	AccessToken(ctx context.Context, provider, userID string) (string, error)
	Credential(provider, userID string) (*storage.CredentialRecord, error)
}

// ActivitySink records completed invocations for diagnostics. Satisfied by
// the bbolt store; nil disables recording.
type ActivitySink interface {
	AppendActivity(record *storage.ActivityRecord) error
}

// Dispatcher routes tool invocations to connector handlers, supplying each
// with a valid token from the token source.
type Dispatcher struct {
	registry    *Registry
	tokens      TokenSource
	activity    ActivitySink
	checkScopes bool
	logger      *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithScopeCheck enables the defensive scope check before dispatch. Many
// providers enforce scopes server-side regardless.
func WithScopeCheck(enabled bool) DispatcherOption {
	return func(d *Dispatcher) { d.checkScopes = enabled }
}

// WithActivitySink records invocations to the given sink.
func WithActivitySink(sink ActivitySink) DispatcherOption {
	return func(d *Dispatcher) { d.activity = sink }
}

// NewDispatcher creates a dispatcher over the registry and token source.
func NewDispatcher(registry *Registry, tokens TokenSource, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		registry: registry,
		tokens:   tokens,
		logger:   logger.Named("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke executes one tool call. Failure modes, all surfaced directly and
// never swallowed: ErrUnknownProvider, ErrUnknownTool, *ScopeError (before
// any network I/O), auth errors from the token source, and *ProviderError
// from the handler itself.
func (d *Dispatcher) Invoke(ctx context.Context, provider, tool, userID string, args map[string]any) (any, error) {
	c, ok := d.registry.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	handler, ok := c.Handler(tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}

	if d.checkScopes {
		if err := d.checkToolScopes(c, tool, provider, userID); err != nil {
			return nil, err
		}
	}

	token, err := d.tokens.AccessToken(ctx, provider, userID)
	if err != nil {
		return nil, err
	}

	inv := &Invocation{
		UserID: userID,
		Token:  token,
		Args:   args,
	}

	start := time.Now()
	result, err := handler(ctx, inv)
	elapsed := time.Since(start)

	invocationsTotal.WithLabelValues(provider, tool).Inc()
	invocationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		invocationFailures.WithLabelValues(provider, tool).Inc()
	}

	d.recordActivity(provider, tool, userID, elapsed, err)

	if err != nil {
		d.logger.Warn("tool invocation failed",
			zap.String("provider", provider),
			zap.String("tool", tool),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	d.logger.Debug("tool invocation completed",
		zap.String("provider", provider),
		zap.String("tool", tool),
		zap.Duration("elapsed", elapsed))
	return result, nil
}

// checkToolScopes verifies the stored credential covers the tool's required
// scopes. Runs before any network call.
func (d *Dispatcher) checkToolScopes(c Connector, tool, provider, userID string) error {
	var declared *Tool
	tools := c.Tools()
	for i := range tools {
		if tools[i].Name == tool {
			declared = &tools[i]
			break
		}
	}
	if declared == nil || len(declared.RequiredScopes) == 0 {
		return nil
	}

	record, err := d.tokens.Credential(provider, userID)
	if err != nil {
		return err
	}
	// API-key credentials have no scope semantics
	if record.APIKey {
		return nil
	}

	var missing []string
	for _, scope := range declared.RequiredScopes {
		if !record.HasScope(scope) {
			missing = append(missing, scope)
		}
	}
	if len(missing) > 0 {
		return &ScopeError{Tool: tool, Missing: missing}
	}
	return nil
}

func (d *Dispatcher) recordActivity(provider, tool, userID string, elapsed time.Duration, invokeErr error) {
	if d.activity == nil {
		return
	}

	record := &storage.ActivityRecord{
		ID:        uuid.NewString(),
		Provider:  provider,
		Tool:      tool,
		UserID:    userID,
		OK:        invokeErr == nil,
		Elapsed:   elapsed,
		Timestamp: time.Now(),
	}
	if invokeErr != nil {
		record.Error = invokeErr.Error()
	}

	if err := d.activity.AppendActivity(record); err != nil {
		d.logger.Warn("failed to record invocation activity", zap.Error(err))
	}
}
