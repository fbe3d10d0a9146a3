package connector

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTool indicates no handler is registered for the invoked name.
var ErrUnknownTool = errors.New("unknown tool")

// ErrUnknownProvider indicates no connector is registered under the name.
var ErrUnknownProvider = errors.New("unknown provider")

// ScopeError indicates the resolved credential's recorded scopes do not
// cover the tool's required scopes. Raised before any network call when the
// defensive check is enabled.
type ScopeError struct {
	Tool    string
	Missing []string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("missing scope for tool %s: %s", e.Tool, strings.Join(e.Missing, ", "))
}

// ProviderError carries a failed provider API call's status and body
// verbatim for diagnostics. No retry is layered on top; callers decide.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: status=%d body=%s", e.Provider, e.StatusCode, e.Body)
}
