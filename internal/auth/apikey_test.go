// ABOUTME: Tests for API key hashing and verification
// ABOUTME: Covers hash roundtrip, wrong keys, and empty hash lists

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRoundtrip(t *testing.T) {
	hash, err := HashAPIKey("sk-dashboard-1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	v := NewAPIKeyVerifier([]string{hash})
	assert.NoError(t, v.Verify("sk-dashboard-1"))
}

func TestAPIKeyWrongKey(t *testing.T) {
	hash, err := HashAPIKey("sk-dashboard-1")
	require.NoError(t, err)

	v := NewAPIKeyVerifier([]string{hash})
	assert.ErrorIs(t, v.Verify("sk-dashboard-2"), ErrUnknownAPIKey)
}

func TestAPIKeyMatchesAnyHash(t *testing.T) {
	h1, err := HashAPIKey("key-one")
	require.NoError(t, err)
	h2, err := HashAPIKey("key-two")
	require.NoError(t, err)

	v := NewAPIKeyVerifier([]string{h1, h2})
	assert.NoError(t, v.Verify("key-one"))
	assert.NoError(t, v.Verify("key-two"))
}

func TestAPIKeyEmptyHashList(t *testing.T) {
	v := NewAPIKeyVerifier(nil)
	assert.ErrorIs(t, v.Verify("anything"), ErrUnknownAPIKey)
}
