// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrNotFound           = errors.New("not found")
	ErrTokenInvalid       = errors.New("invalid token")
)

// AccountLockedError reports a locked account together with the remaining
// lock duration, so callers can surface a retry hint.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, retry in %s", e.RetryAfter.Round(time.Second))
}

// TokenReason classifies why a presented token was rejected.
type TokenReason string

const (
	TokenNotFound      TokenReason = "not_found"
	TokenExpired       TokenReason = "expired"
	TokenRevokedReused TokenReason = "revoked_reused"
)

// TokenError is a TokenInvalid failure with its reason. It unwraps to
// ErrTokenInvalid so callers can match the class without the reason.
type TokenError struct {
	Reason TokenReason
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid token: %s", e.Reason)
}

func (e *TokenError) Unwrap() error {
	return ErrTokenInvalid
}
