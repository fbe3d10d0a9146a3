package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// pkceVerifierLength is a middle value in the RFC 7636 43-128 range.
const pkceVerifierLength = 64

const pkceAllowedChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._"

// PKCE holds a code verifier for the RFC 7636 authorization-code flow.
type PKCE struct {
	Verifier string
}

// NewPKCE generates a cryptographically random code verifier.
func NewPKCE() (*PKCE, error) {
	buf := make([]byte, pkceVerifierLength)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	for i, b := range buf {
		buf[i] = pkceAllowedChars[int(b)%len(pkceAllowedChars)]
	}
	return &PKCE{Verifier: string(buf)}, nil
}

// Challenge returns the S256 code challenge for the verifier: the base64url
// encoded SHA-256 hash with padding stripped.
func (p *PKCE) Challenge() string {
	sum := sha256.Sum256([]byte(p.Verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
