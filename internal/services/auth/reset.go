// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/livingdocs/identity/internal/models"
	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/token"
)

// RequestPasswordReset issues a reset token for the account behind the
// email. It reports success regardless of whether the email matches an
// account, so callers cannot probe for registered addresses.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("password_reset_skipped", "reason", "unknown_email")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if _, err := s.repo.InvalidatePasswordResetTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	opaque, err := token.NewOpaque()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	prt := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		TokenHash: token.Hash(opaque),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.PasswordResetTokenTTL),
	}
	if err := s.repo.CreatePasswordResetToken(ctx, prt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	s.notify(ctx, EventPasswordReset, Recipient{UserID: user.ID, Email: user.Email}, map[string]string{
		"token": opaque,
	})
	slog.Info("password_reset_requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token and sets the new password. Every
// refresh session of the user is revoked; a reset invalidates all existing
// sessions.
func (s *Service) ResetPassword(ctx context.Context, tokenValue, newPassword string) error {
	now := time.Now().UTC()

	prt, err := s.repo.GetActivePasswordResetToken(ctx, token.Hash(tokenValue), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &TokenError{Reason: TokenNotFound}
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, prt.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	// Validate before burning the token, so a weak password leaves it usable.
	validation := s.validator.Validate(newPassword, user.Email)
	if !validation.Valid {
		return &PasswordValidationError{Errors: validation.Errors}
	}

	claimed, err := s.repo.MarkPasswordResetTokenUsed(ctx, prt.ID)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if !claimed {
		return &TokenError{Reason: TokenNotFound}
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	revoked, err := s.repo.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.notify(ctx, EventPasswordChanged, Recipient{UserID: user.ID, Email: user.Email}, nil)
	slog.Info("password_reset", "user_id", user.ID, "sessions_revoked", revoked)
	return nil
}
