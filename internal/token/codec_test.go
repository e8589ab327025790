// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/livingdocs/identity/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestCodec(t *testing.T, ttl time.Duration) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(testSecret, "identity-test", ttl)
	require.NoError(t, err)
	return codec
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := token.NewCodec("", "iss", time.Minute)
	assert.Error(t, err)

	_, err = token.NewCodec("secret", "iss", 0)
	assert.Error(t, err)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	signed, err := codec.IssueAccess("user-123")
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyAccess_Expired(t *testing.T) {
	codec := newTestCodec(t, time.Millisecond)

	signed, err := codec.IssueAccess("user-123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = codec.VerifyAccess(signed)
	assert.ErrorIs(t, err, token.ErrExpiredToken)
}

func TestVerifyAccess_Tampered(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	signed, err := codec.IssueAccess("user-123")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed + "x")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)
	other, err := token.NewCodec("other-secret", "identity-test", 15*time.Minute)
	require.NoError(t, err)

	signed, err := other.IssueAccess("user-123")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

// Tokens minted for other purposes must not pass as access tokens, even with
// a valid signature.
func TestVerifyAccess_RejectsWrongType(t *testing.T) {
	codec := newTestCodec(t, 15*time.Minute)

	claims := token.Claims{
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestNewOpaque(t *testing.T) {
	seen := make(map[string]struct{})
	for range 64 {
		value, err := token.NewOpaque()
		require.NoError(t, err)
		// 32 bytes base64url without padding
		assert.Len(t, value, 43)
		_, dup := seen[value]
		assert.False(t, dup, "opaque tokens must not repeat")
		seen[value] = struct{}{}
	}
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, token.Hash("abc"), token.Hash("abc"))
	assert.NotEqual(t, token.Hash("abc"), token.Hash("abd"))
	assert.Len(t, token.Hash("abc"), 64)
}
