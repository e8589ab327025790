// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User is the identity record for one account.
//
// FailedLoginAttempts and LockedUntil are maintained by the lockout policy;
// LockedUntil is only ever set once the failure counter has reached the
// configured threshold. DeactivatedAt marks a reversible soft delete.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID                  string     `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	IsVerified          bool       `db:"is_verified" json:"is_verified"`
	IsSuperuser         bool       `db:"is_superuser" json:"is_superuser"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	PasswordChangedAt   time.Time  `db:"password_changed_at" json:"-"`
	DeactivatedAt       *time.Time `db:"deactivated_at" json:"-"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}
