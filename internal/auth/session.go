// Package auth provides the session facade connectors call to obtain a
// currently valid access token, transparently refreshing expired ones.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gumcp/gumcp-go/internal/oauth"
	"github.com/gumcp/gumcp-go/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultExpirySkew refreshes tokens that expire within the next 5 minutes,
// so a handler never starts a provider call with a token about to lapse.
const DefaultExpirySkew = 5 * time.Minute

// ErrAuthRequired indicates no credential is on file for a (provider, user)
// pair. The user must run the interactive auth flow out-of-band.
var ErrAuthRequired = errors.New("authentication required")

// Store is the credential persistence interface the facade depends on.
type Store interface {
	GetCredential(provider, userID string) (*storage.CredentialRecord, error)
	PutCredential(record *storage.CredentialRecord) error
}

// Refresher renews an access token for one provider.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context, refreshToken string) (*oauth.Token, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error) {
	return f(ctx, refreshToken)
}

// RefresherFor resolves the refresher bound to a provider's token endpoint
// and app config. Providers without OAuth lifecycle return ok=false.
type RefresherFor func(provider string) (Refresher, bool)

// Session hands out valid access tokens. Reads go through an in-memory cache
// keyed by provider/user; refreshes for the same key are serialized with
// singleflight so concurrent expires trigger a single token endpoint call.
type Session struct {
	store      Store
	refreshers RefresherFor
	skew       time.Duration
	logger     *zap.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*storage.CredentialRecord
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithExpirySkew overrides the refresh-ahead window.
func WithExpirySkew(skew time.Duration) SessionOption {
	return func(s *Session) { s.skew = skew }
}

// NewSession creates a session facade over store. refreshers resolves the
// per-provider refresh client; it may return ok=false for API-key providers.
func NewSession(store Store, refreshers RefresherFor, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		store:      store,
		refreshers: refreshers,
		skew:       DefaultExpirySkew,
		logger:     logger.Named("auth-session"),
		cache:      make(map[string]*storage.CredentialRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(provider, userID string) string {
	return provider + "/" + userID
}

// AccessToken returns a currently valid access token for (provider, user).
// A missing credential fails with ErrAuthRequired; an expired one triggers a
// refresh, which is persisted before the new token is returned. A failed
// refresh surfaces immediately and leaves the stored credential untouched.
func (s *Session) AccessToken(ctx context.Context, provider, userID string) (string, error) {
	record, err := s.lookup(provider, userID)
	if err != nil {
		return "", err
	}

	if record.APIKey || !record.Expired(s.skew) {
		return record.AccessToken, nil
	}

	refreshed, err := s.refresh(ctx, provider, userID)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Credential returns the stored credential, read through the cache. Used by
// the dispatcher for scope checking without a second storage read.
func (s *Session) Credential(provider, userID string) (*storage.CredentialRecord, error) {
	return s.lookup(provider, userID)
}

// Invalidate drops the cached credential for a (provider, user) pair. Called
// after interactive re-auth or credential deletion.
func (s *Session) Invalidate(provider, userID string) {
	s.mu.Lock()
	delete(s.cache, sessionKey(provider, userID))
	s.mu.Unlock()
}

func (s *Session) lookup(provider, userID string) (*storage.CredentialRecord, error) {
	key := sessionKey(provider, userID)

	s.mu.RLock()
	record, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return record, nil
	}

	record, err := s.store.GetCredential(provider, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("no credential for %s/%s: %w", provider, userID, ErrAuthRequired)
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = record
	s.mu.Unlock()
	return record, nil
}

// refresh renews the token for a key, serialized per key. The winning call
// refreshes and persists; callers that piled up behind it share the result.
func (s *Session) refresh(ctx context.Context, provider, userID string) (*storage.CredentialRecord, error) {
	key := sessionKey(provider, userID)

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-read under the flight: a flight that just finished may have
		// already stored a fresh token
		record, err := s.store.GetCredential(provider, userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("no credential for %s/%s: %w", provider, userID, ErrAuthRequired)
			}
			return nil, err
		}
		if record.APIKey || !record.Expired(s.skew) {
			return record, nil
		}

		refresher, ok := s.refreshers(provider)
		if !ok {
			// Provider has no refresh semantics; an expired token means
			// the user must re-authenticate
			return nil, fmt.Errorf("token for %s/%s expired and provider has no refresh flow: %w", provider, userID, ErrAuthRequired)
		}

		if record.RefreshToken == "" {
			return nil, fmt.Errorf("token for %s/%s expired with no refresh token on file: %w", provider, userID, ErrAuthRequired)
		}

		s.logger.Debug("refreshing expired token",
			zap.String("provider", provider),
			zap.String("user_id", userID))

		token, err := refresher.Refresh(ctx, record.RefreshToken)
		if err != nil {
			// Stored credential stays untouched; caller decides whether
			// to fall back to interactive re-auth
			return nil, err
		}

		updated := &storage.CredentialRecord{
			Provider:     provider,
			UserID:       userID,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
			ExpiresAt:    token.ExpiresAt,
			Scopes:       record.Scopes,
			Created:      record.Created,
		}
		if len(token.Scopes) > 0 {
			updated.Scopes = token.Scopes
		}

		if err := s.store.PutCredential(updated); err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[key] = updated
		s.mu.Unlock()

		return updated, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*storage.CredentialRecord), nil
}
