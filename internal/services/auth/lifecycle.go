// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/livingdocs/identity/internal/models"
	"github.com/livingdocs/identity/internal/repository"
)

// Deactivate soft-deletes an account and revokes all of its sessions. The
// account can be revived by Activate or by a successful login.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.DeactivatedAt == nil {
		now := time.Now().UTC()
		user.IsActive = false
		user.DeactivatedAt = &now
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}
	}

	revoked, err := s.repo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("account_deactivated", "user_id", userID, "sessions_revoked", revoked)
	return nil
}

// Activate clears the deactivation fields. Activating an already-active
// account succeeds without effect.
func (s *Service) Activate(ctx context.Context, userID string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsActive && user.DeactivatedAt == nil {
		return nil
	}

	user.IsActive = true
	user.DeactivatedAt = nil
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}

	slog.Info("account_activated", "user_id", userID)
	return nil
}

// Delete permanently removes the user and every token it owns. Removal of
// non-credential resources (documents, files) belongs to their own services
// and is triggered by the caller.
func (s *Service) Delete(ctx context.Context, userID string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.deleteUser(ctx, user); err != nil {
		return err
	}

	s.notify(ctx, EventAccountDeleted, Recipient{UserID: user.ID, Email: user.Email}, nil)
	slog.Info("account_deleted", "user_id", userID)
	return nil
}

// PurgeStaleDeactivated deletes accounts deactivated longer than olderThan
// ago and returns the number purged. Intended to run on a periodic schedule.
func (s *Service) PurgeStaleDeactivated(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	users, err := s.repo.ListUsersDeactivatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale accounts: %w", err)
	}

	purged := 0
	for i := range users {
		if err := s.deleteUser(ctx, &users[i]); err != nil {
			slog.Error("purge_failed", "user_id", users[i].ID, "error", err)
			continue
		}
		purged++
	}

	if purged > 0 {
		slog.Info("stale_accounts_purged", "count", purged)
	}
	return purged, nil
}

// PurgeExpiredTokens removes expired refresh, verification, and reset token
// rows. Returns the total number of rows removed.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	var total int64

	n, err := s.repo.PurgeExpiredRefreshTokens(ctx, now)
	if err != nil {
		return total, fmt.Errorf("failed to purge refresh tokens: %w", err)
	}
	total += n

	n, err = s.repo.PurgeExpiredVerificationTokens(ctx, now)
	if err != nil {
		return total, fmt.Errorf("failed to purge verification tokens: %w", err)
	}
	total += n

	n, err = s.repo.PurgeExpiredPasswordResetTokens(ctx, now)
	if err != nil {
		return total, fmt.Errorf("failed to purge reset tokens: %w", err)
	}
	total += n

	return total, nil
}

// deleteUser removes the token rows explicitly before the user row; the
// ON DELETE CASCADE constraints are a backstop, not the mechanism.
func (s *Service) deleteUser(ctx context.Context, user *models.User) error {
	if err := s.repo.DeleteRefreshTokensForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	if err := s.repo.DeleteVerificationTokensForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete verification tokens: %w", err)
	}
	if err := s.repo.DeletePasswordResetTokensForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	if err := s.repo.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
