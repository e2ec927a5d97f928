// Package token mints opaque refresh tokens. Only the digest of a token is
// persisted; the raw value goes to the client once.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// RefreshTokenBytes is the entropy of a refresh token before encoding.
const RefreshTokenBytes = 48

// Refresh is a freshly minted token and its storage key.
type Refresh struct {
	Raw  string
	Hash string
}

// NewRefresh draws RefreshTokenBytes of randomness, URL-safe encoded.
func NewRefresh() (Refresh, error) {
	b := make([]byte, RefreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return Refresh{}, err
	}
	raw := base64.RawURLEncoding.EncodeToString(b)
	return Refresh{Raw: raw, Hash: HashSHA256(raw)}, nil
}

func HashSHA256(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
