// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// RefreshToken is one issued session credential. The opaque value handed to
// the client is never stored; TokenHash holds its SHA-256 digest. FamilyID
// groups every token descended from one login, ReplacedBy links a rotated
// token to its successor. A token with ReplacedBy set is always revoked.
type RefreshToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID         string     `db:"id" json:"id"`
	TokenHash  string     `db:"token_hash" json:"-"`
	UserID     string     `db:"user_id" json:"user_id"`
	FamilyID   string     `db:"family_id" json:"-"`
	IsRevoked  bool       `db:"is_revoked" json:"-"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at" json:"-"`
	ReplacedBy *string    `db:"replaced_by" json:"-"`
	DeviceInfo string     `db:"device_info" json:"device_info"`
	IPAddress  string     `db:"ip_address" json:"ip_address"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Active reports whether the token is neither revoked nor expired.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.IsRevoked && !t.Expired(now)
}
