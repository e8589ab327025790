// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/livingdocs/identity/internal/models"
)

// CreatePasswordResetToken inserts a new password reset token record.
func (r *Repository) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = utcNow()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (id, token_hash, user_id, is_used, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.TokenHash, token.UserID, token.IsUsed, token.ExpiresAt,
		token.UsedAt, token.CreatedAt)
	return err
}

// GetActivePasswordResetToken retrieves an unused, unexpired reset token by
// the digest of its opaque value.
func (r *Repository) GetActivePasswordResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.db.GetContext(ctx, &token,
		`SELECT * FROM password_reset_tokens WHERE token_hash = ? AND is_used = 0 AND expires_at > ?`,
		tokenHash, now)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// InvalidatePasswordResetTokens marks every unused reset token for the user
// as used.
func (r *Repository) InvalidatePasswordResetTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET is_used = 1, used_at = ? WHERE user_id = ? AND is_used = 0`,
		utcNow(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkPasswordResetTokenUsed claims a reset token for consumption. Returns
// false if it was already used.
func (r *Repository) MarkPasswordResetTokenUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET is_used = 1, used_at = ? WHERE id = ? AND is_used = 0`,
		utcNow(), id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeletePasswordResetTokensForUser removes all reset tokens for a user.
func (r *Repository) DeletePasswordResetTokensForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = ?`, userID)
	return err
}

// PurgeExpiredPasswordResetTokens deletes expired reset tokens.
func (r *Repository) PurgeExpiredPasswordResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
