// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/livingdocs/identity/internal/models"
)

// CreateUser inserts a new user. A missing ID is generated, timestamps are
// stamped on the way in.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := utcNow()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.PasswordChangedAt.IsZero() {
		user.PasswordChangedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, is_active, is_verified, is_superuser,
		   failed_login_attempts, locked_until, password_changed_at, deactivated_at,
		   last_login_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.IsActive, user.IsVerified, user.IsSuperuser,
		user.FailedLoginAttempts, user.LockedUntil, user.PasswordChangedAt, user.DeactivatedAt,
		user.LastLoginAt, user.CreatedAt, user.UpdatedAt)
	return err
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address. The match is
// case-sensitive, exactly as stored.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUser writes back every mutable field of the user record.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = utcNow()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, password_hash = ?, is_active = ?, is_verified = ?,
		   is_superuser = ?, failed_login_attempts = ?, locked_until = ?,
		   password_changed_at = ?, deactivated_at = ?, last_login_at = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email, user.PasswordHash, user.IsActive, user.IsVerified,
		user.IsSuperuser, user.FailedLoginAttempts, user.LockedUntil,
		user.PasswordChangedAt, user.DeactivatedAt, user.LastLoginAt, user.UpdatedAt,
		user.ID)
	return err
}

// UpdateUserPassword updates the password hash and stamps password_changed_at.
func (r *Repository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	now := utcNow()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password_changed_at = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, now, id)
	return err
}

// UpdateUserEmail swaps the email address and marks the account verified in a
// single statement. Used when an email-change token is consumed.
func (r *Repository) UpdateUserEmail(ctx context.Context, id, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, is_verified = 1, updated_at = ? WHERE id = ?`,
		email, utcNow(), id)
	return err
}

// DeleteUser removes a user. Token rows are removed by the ON DELETE CASCADE
// constraints; AccountLifecycle additionally deletes them explicitly so the
// cascade is a backstop, not a dependency.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ListUsersDeactivatedBefore returns users soft-deleted before the cutoff,
// oldest first. Used by the periodic purge sweep.
func (r *Repository) ListUsersDeactivatedBefore(ctx context.Context, cutoff time.Time) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE deactivated_at IS NOT NULL AND deactivated_at < ?
		 ORDER BY deactivated_at ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
