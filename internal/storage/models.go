package storage

import (
	"errors"
	"time"
)

// Bucket names for bbolt database
const (
	CredentialsBucket = "credentials"
	ActivityBucket    = "activity"
	MetaBucket        = "meta"
)

// Meta keys
const (
	SchemaVersionKey = "schema"
)

// Current schema version
const CurrentSchemaVersion = 1

// ErrNotFound is returned when no credential exists for a (provider, user) pair.
// Callers must treat it as a signal to run the interactive auth flow.
var ErrNotFound = errors.New("credential not found")

// CredentialRecord is the stored token material for one (provider, user) pair.
// At most one live record exists per pair; Put overwrites.
type CredentialRecord struct {
	Provider     string    `json:"provider"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	APIKey       bool      `json:"api_key,omitempty"` // true for key-based providers with no OAuth lifecycle
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// Expired reports whether the access token is past (or within skew of) its
// recorded expiry. Records without an expiry never expire.
func (r *CredentialRecord) Expired(skew time.Duration) bool {
	if r.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(r.ExpiresAt.Add(-skew))
}

// HasScope reports whether the credential's recorded scope set covers scope.
func (r *CredentialRecord) HasScope(scope string) bool {
	for _, s := range r.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ActivityRecord captures one tool invocation for diagnostics.
type ActivityRecord struct {
	ID        string        `json:"id"`
	Provider  string        `json:"provider"`
	Tool      string        `json:"tool"`
	UserID    string        `json:"user_id"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	Timestamp time.Time     `json:"timestamp"`
}
