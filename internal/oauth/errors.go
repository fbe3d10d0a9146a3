// Package oauth implements the token lifecycle shared by every connector:
// authorization-code exchange, refresh-token renewal, and the interactive
// authorization flow.
package oauth

import (
	"errors"
	"fmt"
)

// Sentinel errors for consistent handling across the codebase.
var (
	// ErrNoRefreshToken indicates a refresh was requested but the stored
	// credential carries no refresh token. Requires interactive re-auth.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrFlowTimeout indicates the interactive flow ended without the
	// provider redirecting back with a code.
	ErrFlowTimeout = errors.New("authorization timed out or was canceled")
)

// ExchangeError is returned when a provider's token endpoint rejects a code
// exchange or refresh. The provider error body is carried verbatim for
// diagnostics; no retry is attempted on top of it.
type ExchangeError struct {
	Op         string // "exchange_code" or "refresh"
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("oauth %s failed: status=%d body=%s", e.Op, e.StatusCode, e.Body)
}

// IsExchangeError reports whether err is (or wraps) an ExchangeError.
func IsExchangeError(err error) bool {
	var exchangeErr *ExchangeError
	return errors.As(err, &exchangeErr)
}
