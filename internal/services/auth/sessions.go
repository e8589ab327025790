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

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionInfo describes one active refresh session for display to its owner.
// IsCurrent is a hint derived from the recorded IP, not a security boundary.
type SessionInfo struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"device_info"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsCurrent  bool      `json:"is_current"`
}

// Login authenticates a user and opens a new session family.
//
// The check order is deliberate and load-bearing: the lockout check runs
// before password verification, the verification-required check only after a
// correct password. An unauthenticated caller can thus learn whether an
// account is locked, but not whether it is verified.
func (s *Service) Login(ctx context.Context, email, password, deviceInfo, ip string) (*TokenPair, error) {
	now := time.Now().UTC()

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same work as a real verification, so unknown emails are not
			// distinguishable by timing.
			s.hasher.verifyDummy(password)
			slog.Warn("login_failed", "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.lockout.IsLocked(user, now) {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "account_locked")
		return nil, &AccountLockedError{RetryAfter: s.lockout.RetryAfter(user, now)}
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		// Lost updates between concurrent failures are tolerated; the
		// counter is a soft control, not a correctness invariant.
		s.lockout.RecordFailure(user, now)
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		slog.Warn("login_failed", "user_id", user.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	// A correct password reverses a soft delete.
	if user.DeactivatedAt != nil || !user.IsActive {
		user.IsActive = true
		user.DeactivatedAt = nil
	}

	if s.cfg.RequireEmailVerification && !user.IsVerified {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "email_not_verified")
		return nil, ErrEmailNotVerified
	}

	s.lockout.RecordSuccess(user, now)
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login success: %w", err)
	}

	pair, refreshToken, err := s.mintSession(user.ID, uuid.NewString(), deviceInfo, ip, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	slog.Info("login_success", "user_id", user.ID, "family_id", refreshToken.FamilyID)
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the presented
// token. Presenting an already-revoked token is treated as reuse: the whole
// family is revoked and the owner is alerted.
func (s *Service) Refresh(ctx context.Context, refreshToken, deviceInfo, ip string) (*TokenPair, error) {
	now := time.Now().UTC()

	current, err := s.repo.GetRefreshTokenByHash(ctx, token.Hash(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &TokenError{Reason: TokenNotFound}
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if current.IsRevoked {
		return nil, s.handleReuse(ctx, current)
	}

	if current.Expired(now) {
		return nil, &TokenError{Reason: TokenExpired}
	}

	user, err := s.repo.GetUserByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &TokenError{Reason: TokenNotFound}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.DeactivatedAt != nil || !user.IsActive {
		user.IsActive = true
		user.DeactivatedAt = nil
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to reactivate user: %w", err)
		}
	}

	pair, successor, err := s.mintSession(user.ID, current.FamilyID, deviceInfo, ip, now)
	if err != nil {
		return nil, err
	}

	claimed, err := s.repo.RotateRefreshToken(ctx, current.ID, successor)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if !claimed {
		// A concurrent call rotated or revoked the token first; this
		// presentation counts as reuse.
		return nil, s.handleReuse(ctx, current)
	}

	slog.Info("refresh_success", "user_id", user.ID, "family_id", current.FamilyID)
	return pair, nil
}

// handleReuse contains a replayed refresh token: every token in the family
// is revoked and the owner receives exactly one security alert per event.
func (s *Service) handleReuse(ctx context.Context, reused *models.RefreshToken) error {
	revoked, err := s.repo.RevokeAllInFamily(ctx, reused.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to revoke token family: %w", err)
	}

	slog.Warn("refresh_reuse_detected",
		"user_id", reused.UserID,
		"family_id", reused.FamilyID,
		"revoked", revoked,
	)

	if user, err := s.repo.GetUserByID(ctx, reused.UserID); err == nil {
		s.notify(ctx, EventSecurityAlert, Recipient{UserID: user.ID, Email: user.Email}, map[string]string{
			"reason": "refresh_token_reuse",
		})
	}

	return &TokenError{Reason: TokenRevokedReused}
}

// mintSession builds the access token and the refresh token record for a
// session belonging to the given family. The caller persists the record.
func (s *Service) mintSession(userID, familyID, deviceInfo, ip string, now time.Time) (*TokenPair, *models.RefreshToken, error) {
	opaque, err := token.NewOpaque()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	record := &models.RefreshToken{
		ID:         uuid.NewString(),
		TokenHash:  token.Hash(opaque),
		UserID:     userID,
		FamilyID:   familyID,
		ExpiresAt:  now.Add(s.cfg.RefreshTokenTTL),
		DeviceInfo: deviceInfo,
		IPAddress:  ip,
		CreatedAt:  now,
	}

	pair := &TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}
	return pair, record, nil
}

// Logout revokes the presented refresh token if it exists and belongs to the
// requesting user. Revoking an unknown or already-revoked token is not an
// error.
func (s *Service) Logout(ctx context.Context, refreshToken, userID string) error {
	current, err := s.repo.GetRefreshTokenByHash(ctx, token.Hash(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if current.UserID != userID || current.IsRevoked {
		return nil
	}

	if err := s.repo.RevokeRefreshToken(ctx, current.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	slog.Info("logout", "user_id", userID)
	return nil
}

// LogoutAll revokes every unrevoked session of the user and returns the
// number revoked.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int64, error) {
	revoked, err := s.repo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	slog.Info("logout_all", "user_id", userID, "revoked", revoked)
	return revoked, nil
}

// ListSessions returns the user's active sessions, newest first, each
// annotated with whether its recorded IP matches the caller's.
func (s *Service) ListSessions(ctx context.Context, userID, currentIP string) ([]SessionInfo, error) {
	tokens, err := s.repo.ActiveSessionsForUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]SessionInfo, len(tokens))
	for i, t := range tokens {
		sessions[i] = SessionInfo{
			ID:         t.ID,
			DeviceInfo: t.DeviceInfo,
			IPAddress:  t.IPAddress,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
			IsCurrent:  t.IPAddress != "" && t.IPAddress == currentIP,
		}
	}
	return sessions, nil
}

// RevokeSession revokes one specific active session belonging to the user.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	current, err := s.repo.GetRefreshTokenByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up session: %w", err)
	}
	if current.UserID != userID || !current.Active(time.Now().UTC()) {
		return ErrNotFound
	}

	if err := s.repo.RevokeRefreshToken(ctx, current.ID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	slog.Info("session_revoked", "user_id", userID, "session_id", sessionID)
	return nil
}
