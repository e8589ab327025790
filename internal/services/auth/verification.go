// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/livingdocs/identity/internal/models"
	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/token"
)

// IssueVerificationToken creates a fresh email-verification token for the
// user and invalidates all prior unused ones, so at most one is consumable.
// The opaque value is returned for delivery and also handed to the notifier.
func (s *Service) IssueVerificationToken(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	opaque, err := s.issueOneTime(ctx, user.ID, models.TokenKindEmailVerification, nil)
	if err != nil {
		return "", err
	}

	s.notify(ctx, EventVerification, Recipient{UserID: user.ID, Email: user.Email}, map[string]string{
		"token": opaque,
	})
	return opaque, nil
}

// ResendVerification issues a new verification token for the given email.
// It reports success regardless of whether the email matches an account, so
// callers cannot probe for registered addresses.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("resend_verification_skipped", "reason", "unknown_email")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsVerified {
		return nil
	}

	_, err = s.IssueVerificationToken(ctx, user.ID)
	return err
}

// RequestEmailChange verifies the user's password, then issues an
// email-change token carrying the pending address. The change only takes
// effect when the token is consumed.
func (s *Service) RequestEmailChange(ctx context.Context, userID, newEmail, password string) error {
	if _, err := mail.ParseAddress(newEmail); err != nil {
		return ErrInvalidEmail
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if _, err := s.repo.GetUserByEmail(ctx, newEmail); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	opaque, err := s.issueOneTime(ctx, user.ID, models.TokenKindEmailChange, &newEmail)
	if err != nil {
		return err
	}

	// The confirmation goes to the address being claimed.
	s.notify(ctx, EventEmailChange, Recipient{UserID: user.ID, Email: newEmail}, map[string]string{
		"token": opaque,
	})
	slog.Info("email_change_requested", "user_id", user.ID)
	return nil
}

// ConsumeVerification consumes a verification or email-change token. For
// email-change tokens the email swap and the verified flag are applied as a
// single update. Returns the user as it stands after consumption.
func (s *Service) ConsumeVerification(ctx context.Context, tokenValue string) (*models.User, error) {
	now := time.Now().UTC()

	vt, err := s.repo.GetActiveVerificationToken(ctx, token.Hash(tokenValue), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &TokenError{Reason: TokenNotFound}
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}

	claimed, err := s.repo.MarkVerificationTokenUsed(ctx, vt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}
	if !claimed {
		return nil, &TokenError{Reason: TokenNotFound}
	}

	user, err := s.repo.GetUserByID(ctx, vt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	switch vt.TokenType {
	case models.TokenKindEmailChange:
		if vt.NewEmail == nil {
			return nil, &TokenError{Reason: TokenNotFound}
		}
		if err := s.repo.UpdateUserEmail(ctx, user.ID, *vt.NewEmail); err != nil {
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
		user.Email = *vt.NewEmail
		user.IsVerified = true
		slog.Info("email_changed", "user_id", user.ID)
	default:
		user.IsVerified = true
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
		slog.Info("email_verified", "user_id", user.ID)
	}

	return user, nil
}

// issueOneTime invalidates prior unused tokens of the kind and creates a new
// one. Returns the opaque value.
func (s *Service) issueOneTime(ctx context.Context, userID, kind string, newEmail *string) (string, error) {
	if _, err := s.repo.InvalidateVerificationTokens(ctx, userID, kind); err != nil {
		return "", fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	opaque, err := token.NewOpaque()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	vt := &models.VerificationToken{
		ID:        uuid.NewString(),
		TokenHash: token.Hash(opaque),
		UserID:    userID,
		TokenType: kind,
		NewEmail:  newEmail,
		ExpiresAt: time.Now().UTC().Add(s.cfg.VerificationTokenTTL),
	}
	if err := s.repo.CreateVerificationToken(ctx, vt); err != nil {
		return "", fmt.Errorf("failed to create verification token: %w", err)
	}
	return opaque, nil
}
