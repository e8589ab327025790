// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/livingdocs/identity/internal/models"
)

// CreateRefreshToken inserts a new refresh token record.
func (r *Repository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = utcNow()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token_hash, user_id, family_id, is_revoked,
		   expires_at, revoked_at, replaced_by, device_info, ip_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.TokenHash, token.UserID, token.FamilyID, token.IsRevoked,
		token.ExpiresAt, token.RevokedAt, token.ReplacedBy, token.DeviceInfo,
		token.IPAddress, token.CreatedAt)
	return err
}

// GetRefreshTokenByHash retrieves a refresh token by the digest of its opaque value.
func (r *Repository) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.GetContext(ctx, &token, `SELECT * FROM refresh_tokens WHERE token_hash = ?`, tokenHash); err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// GetRefreshTokenByID retrieves a refresh token by its record ID.
func (r *Repository) GetRefreshTokenByID(ctx context.Context, id string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.GetContext(ctx, &token, `SELECT * FROM refresh_tokens WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// FindFamily returns every token in a rotation family, oldest first.
func (r *Repository) FindFamily(ctx context.Context, familyID string) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := r.db.SelectContext(ctx, &tokens,
		`SELECT * FROM refresh_tokens WHERE family_id = ? ORDER BY created_at ASC`, familyID)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// RevokeRefreshToken marks a token revoked. Already-revoked tokens are left
// untouched, which keeps logout idempotent.
func (r *Repository) RevokeRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ? WHERE id = ? AND is_revoked = 0`,
		utcNow(), id)
	return err
}

// RotateRefreshToken atomically retires the presented token and persists its
// successor. The claim succeeds only if the old token is still unrevoked;
// two concurrent rotations of the same token therefore resolve to exactly one
// winner. Returns false when the claim was lost.
func (r *Repository) RotateRefreshToken(ctx context.Context, oldID string, successor *models.RefreshToken) (bool, error) {
	if successor.CreatedAt.IsZero() {
		successor.CreatedAt = utcNow()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ?, replaced_by = ?
		 WHERE id = ? AND is_revoked = 0`,
		utcNow(), successor.ID, oldID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Lost the race: someone else already rotated or revoked this token.
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token_hash, user_id, family_id, is_revoked,
		   expires_at, revoked_at, replaced_by, device_info, ip_address, created_at)
		 VALUES (?, ?, ?, ?, 0, ?, NULL, NULL, ?, ?, ?)`,
		successor.ID, successor.TokenHash, successor.UserID, successor.FamilyID,
		successor.ExpiresAt, successor.DeviceInfo, successor.IPAddress, successor.CreatedAt)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// RevokeAllInFamily revokes every unrevoked token in a rotation family and
// returns the number of tokens touched.
func (r *Repository) RevokeAllInFamily(ctx context.Context, familyID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ? WHERE family_id = ? AND is_revoked = 0`,
		utcNow(), familyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RevokeAllForUser revokes every unrevoked token owned by the user.
func (r *Repository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_revoked = 1, revoked_at = ? WHERE user_id = ? AND is_revoked = 0`,
		utcNow(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ActiveSessionsForUser returns the user's unrevoked, unexpired tokens,
// newest first.
func (r *Repository) ActiveSessionsForUser(ctx context.Context, userID string, now time.Time) ([]models.RefreshToken, error) {
	var tokens []models.RefreshToken
	err := r.db.SelectContext(ctx, &tokens,
		`SELECT * FROM refresh_tokens
		 WHERE user_id = ? AND is_revoked = 0 AND expires_at > ?
		 ORDER BY created_at DESC`, userID, now)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteRefreshTokensForUser removes all token rows for a user.
func (r *Repository) DeleteRefreshTokensForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}

// PurgeExpiredRefreshTokens deletes tokens past their expiry and returns the
// number of rows removed.
func (r *Repository) PurgeExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
