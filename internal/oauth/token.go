package oauth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Token is the normalized result of a token endpoint call.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time // zero when the provider has no expiry semantics
	Scopes       []string
}

// Expired reports whether the token is past its recorded expiry.
// Tokens without an expiry never expire.
func (t *Token) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// parseTokenResponse normalizes a provider token endpoint response body.
// Providers disagree on expiry encoding: most return expires_in seconds,
// a few return an absolute expires_at.
func parseTokenResponse(body []byte) (*Token, error) {
	var resp struct {
		AccessToken  string          `json:"access_token"`
		RefreshToken string          `json:"refresh_token"`
		TokenType    string          `json:"token_type"`
		ExpiresIn    json.Number     `json:"expires_in"`
		ExpiresAt    json.RawMessage `json:"expires_at"`
		Scope        string          `json:"scope"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token response contains no access_token")
	}

	token := &Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
	}

	if resp.Scope != "" {
		token.Scopes = strings.Fields(resp.Scope)
	}

	if seconds, err := resp.ExpiresIn.Int64(); err == nil && seconds > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(seconds) * time.Second)
	} else if len(resp.ExpiresAt) > 0 {
		// expires_at may be a unix timestamp or an RFC3339 string
		var unix int64
		var stamp string
		if err := json.Unmarshal(resp.ExpiresAt, &unix); err == nil && unix > 0 {
			token.ExpiresAt = time.Unix(unix, 0)
		} else if err := json.Unmarshal(resp.ExpiresAt, &stamp); err == nil {
			if parsed, parseErr := time.Parse(time.RFC3339, stamp); parseErr == nil {
				token.ExpiresAt = parsed
			}
		}
	}

	return token, nil
}
