// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the credential and session lifecycle core:
// password verification, access/refresh token issuance, refresh rotation with
// reuse detection, account lockout, single-use verification and reset tokens,
// and account lifecycle management. All collaborators are supplied through
// the constructor; nothing is looked up from process-wide state.
package auth

import (
	"context"
	"log/slog"

	"github.com/livingdocs/identity/internal/config"
	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/token"
)

type Service struct {
	repo      *repository.Repository
	codec     *token.Codec
	notifier  Notifier
	hasher    *Hasher
	validator *PasswordValidator
	lockout   LockoutPolicy
	cfg       *config.AuthConfig
}

// NewService wires the credential core together. The notifier may be a no-op
// implementation; it must not be nil.
func NewService(repo *repository.Repository, codec *token.Codec, notifier Notifier, cfg *config.AuthConfig) *Service {
	return &Service{
		repo:      repo,
		codec:     codec,
		notifier:  notifier,
		hasher:    NewHasher(),
		validator: DefaultPasswordValidator(),
		lockout: LockoutPolicy{
			MaxAttempts:  cfg.MaxLoginAttempts,
			LockDuration: cfg.LockoutDuration,
		},
		cfg: cfg,
	}
}

// PasswordValidator returns the password validator for use in handlers.
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.validator
}

// notify dispatches an event to the notification collaborator. State is
// committed before this is called; a delivery failure is logged and never
// rolls anything back.
func (s *Service) notify(ctx context.Context, event Event, to Recipient, payload map[string]string) {
	if err := s.notifier.Notify(ctx, event, to, payload); err != nil {
		slog.Warn("notify_failed", "event", string(event), "user_id", to.UserID, "error", err)
	}
}
