// ABOUTME: Static API key verification against bcrypt hashes from config
// ABOUTME: Alternative credential to JWT for dashboard service accounts

package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownAPIKey is returned when a presented key matches no configured hash.
var ErrUnknownAPIKey = errors.New("unknown api key")

// APIKeyVerifier checks presented keys against a configured list of bcrypt
// hashes. Keys are never stored in the clear; config carries only hashes
// produced by HashAPIKey.
type APIKeyVerifier struct {
	hashes [][]byte
}

// NewAPIKeyVerifier creates a verifier over the configured hash list.
func NewAPIKeyVerifier(hashes []string) *APIKeyVerifier {
	v := &APIKeyVerifier{}
	for _, h := range hashes {
		v.hashes = append(v.hashes, []byte(h))
	}
	return v
}

// Verify returns nil when the key matches any configured hash.
func (v *APIKeyVerifier) Verify(key string) error {
	for _, h := range v.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(key)) == nil {
			return nil
		}
	}
	return ErrUnknownAPIKey
}

// HashAPIKey produces a bcrypt hash suitable for the auth.api_key_hashes
// config list.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
