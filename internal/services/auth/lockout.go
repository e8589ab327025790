// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"time"

	"github.com/livingdocs/identity/internal/models"
)

// LockoutPolicy is pure decision logic over a user's failure counter and
// lock expiry. It is account-scoped; source IP plays no role.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// RecordFailure increments the failure counter and, once the threshold is
// reached, sets the lock expiry. The caller persists the user afterwards.
func (p LockoutPolicy) RecordFailure(user *models.User, now time.Time) {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		user.LockedUntil = &until
	}
}

// RecordSuccess resets the failure counter, clears any stale lock, and
// stamps the login time.
func (p LockoutPolicy) RecordSuccess(user *models.User, now time.Time) {
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	login := now
	user.LastLoginAt = &login
}

// IsLocked reports whether the account is currently locked. A lock lapses
// silently once its expiry passes; no explicit unlock exists.
func (p LockoutPolicy) IsLocked(user *models.User, now time.Time) bool {
	return user.LockedUntil != nil && user.LockedUntil.After(now)
}

// RetryAfter returns the remaining lock duration, or zero when unlocked.
func (p LockoutPolicy) RetryAfter(user *models.User, now time.Time) time.Duration {
	if !p.IsLocked(user, now) {
		return 0
	}
	return user.LockedUntil.Sub(now)
}
