// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// PasswordResetToken is a single-use token for password reset. It follows
// the same single-active-token rule as VerificationToken.
type PasswordResetToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string     `db:"id" json:"id"`
	TokenHash string     `db:"token_hash" json:"-"`
	UserID    string     `db:"user_id" json:"user_id"`
	IsUsed    bool       `db:"is_used" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt    *time.Time `db:"used_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
