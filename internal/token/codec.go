// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies signed access tokens and generates the
// opaque random values used for refresh, verification, and reset tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature, shape, or
	// type checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token has expired")
)

const accessTokenType = "access"

// Claims are the payload of an access token. TokenType pins the token to its
// class; tokens minted for other purposes are rejected even when otherwise
// valid.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Codec issues and verifies stateless HS256-signed access tokens. Access
// tokens are not individually revocable; containment relies on the short TTL.
type Codec struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewCodec creates a Codec. The secret must be non-empty and the TTL positive.
func NewCodec(secret, issuer string, accessTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("token: access TTL must be positive")
	}
	return &Codec{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
	}, nil
}

// IssueAccess creates a signed access token for the given user.
func (c *Codec) IssueAccess(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// VerifyAccess validates the signature, expiry, and token class.
func (c *Codec) VerifyAccess(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != accessTokenType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}
