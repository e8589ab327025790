// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Verification token kinds.
const (
	TokenKindEmailVerification = "email_verification"
	TokenKindEmailChange       = "email_change"
)

// VerificationToken is a single-use token for email verification or
// email-change confirmation. NewEmail is only set for email-change tokens.
// At most one unused, unexpired token exists per (user, kind); issuing a new
// one marks all prior unused tokens of that kind as used.
type VerificationToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string     `db:"id" json:"id"`
	TokenHash string     `db:"token_hash" json:"-"`
	UserID    string     `db:"user_id" json:"user_id"`
	TokenType string     `db:"token_type" json:"token_type"`
	NewEmail  *string    `db:"new_email" json:"-"`
	IsUsed    bool       `db:"is_used" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
