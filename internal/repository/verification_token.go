// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/livingdocs/identity/internal/models"
)

// CreateVerificationToken inserts a new verification token record.
func (r *Repository) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = utcNow()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (id, token_hash, user_id, token_type, new_email,
		   is_used, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.TokenHash, token.UserID, token.TokenType, token.NewEmail,
		token.IsUsed, token.ExpiresAt, token.UsedAt, token.CreatedAt)
	return err
}

// GetActiveVerificationToken retrieves an unused, unexpired verification
// token by the digest of its opaque value.
func (r *Repository) GetActiveVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := r.db.GetContext(ctx, &token,
		`SELECT * FROM verification_tokens WHERE token_hash = ? AND is_used = 0 AND expires_at > ?`,
		tokenHash, now)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// InvalidateVerificationTokens marks every unused token of the given kind for
// the user as used, enforcing the single-active-token rule on issuance.
func (r *Repository) InvalidateVerificationTokens(ctx context.Context, userID, tokenType string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE verification_tokens SET is_used = 1, used_at = ?
		 WHERE user_id = ? AND token_type = ? AND is_used = 0`,
		utcNow(), userID, tokenType)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkVerificationTokenUsed claims a token for consumption. Returns false if
// it was already used, so a token is consumable exactly once even under
// concurrent calls.
func (r *Repository) MarkVerificationTokenUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE verification_tokens SET is_used = 1, used_at = ? WHERE id = ? AND is_used = 0`,
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

// DeleteVerificationTokensForUser removes all verification tokens for a user.
func (r *Repository) DeleteVerificationTokensForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE user_id = ?`, userID)
	return err
}

// PurgeExpiredVerificationTokens deletes expired verification tokens.
func (r *Repository) PurgeExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
