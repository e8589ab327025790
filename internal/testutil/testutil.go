// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/livingdocs/identity/internal/config"
	"github.com/livingdocs/identity/internal/database"
	"github.com/livingdocs/identity/internal/models"
	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/services/auth"
	"github.com/livingdocs/identity/internal/token"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// TestAuthConfig returns an auth configuration with the production defaults
// scaled for tests.
func TestAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		SecretKey:                "test-secret-key",
		Issuer:                   "identity-test",
		AccessTokenTTL:           15 * time.Minute,
		RefreshTokenTTL:          7 * 24 * time.Hour,
		VerificationTokenTTL:     24 * time.Hour,
		PasswordResetTokenTTL:    time.Hour,
		MaxLoginAttempts:         5,
		LockoutDuration:          30 * time.Minute,
		RequireEmailVerification: false,
		PurgeDeactivatedAfter:    30 * 24 * time.Hour,
	}
}

// NewTestService wires an auth service against an in-memory database and a
// capturing notifier.
func NewTestService(t *testing.T, cfg *config.AuthConfig) (*auth.Service, *repository.Repository, *CaptureNotifier) {
	t.Helper()
	if cfg == nil {
		cfg = TestAuthConfig()
	}
	_, repo := NewTestDB(t)
	codec, err := token.NewCodec(cfg.SecretKey, cfg.Issuer, cfg.AccessTokenTTL)
	require.NoError(t, err)
	notifier := &CaptureNotifier{}
	return auth.NewService(repo, codec, notifier, cfg), repo, notifier
}

// NewTestUser creates an active, verified user with the given password.
// bcrypt.MinCost keeps fixture creation fast.
func NewTestUser(t *testing.T, repo *repository.Repository, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		IsVerified:   true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// CapturedEvent is one notification recorded by CaptureNotifier.
type CapturedEvent struct {
	Event   auth.Event
	To      auth.Recipient
	Payload map[string]string
}

// CaptureNotifier records notifications for assertions instead of sending.
type CaptureNotifier struct {
	mu     sync.Mutex
	events []CapturedEvent
}

func (n *CaptureNotifier) Notify(_ context.Context, event auth.Event, to auth.Recipient, payload map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, CapturedEvent{Event: event, To: to, Payload: payload})
	return nil
}

// Events returns a copy of the recorded notifications.
func (n *CaptureNotifier) Events() []CapturedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]CapturedEvent(nil), n.events...)
}

// EventsOf returns the recorded notifications of one kind.
func (n *CaptureNotifier) EventsOf(event auth.Event) []CapturedEvent {
	var out []CapturedEvent
	for _, e := range n.Events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
