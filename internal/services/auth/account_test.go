// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"

	"github.com/livingdocs/identity/internal/services/auth"
	"github.com/livingdocs/identity/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	svc, repo, notifier := testutil.NewTestService(t, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "s0me-l0ng-unguessable!")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "s0me-l0ng-unguessable!", user.PasswordHash)

	stored, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	// Registration issues the first verification token.
	events := notifier.EventsOf(auth.EventVerification)
	require.Len(t, events, 1)
	assert.Equal(t, "alice@example.com", events[0].To.Email)
	assert.NotEmpty(t, events[0].Payload["token"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "s0me-l0ng-unguessable!")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "an0ther-go0d-one!")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestRegister_InvalidEmail(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t, nil)

	_, err := svc.Register(context.Background(), "not-an-email", "s0me-l0ng-unguessable!")
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t, nil)

	_, err := svc.Register(context.Background(), "alice@example.com", "password")
	var weak *auth.PasswordValidationError
	require.ErrorAs(t, err, &weak)
	assert.NotEmpty(t, weak.Messages())
}

func TestChangePassword_Success(t *testing.T) {
	svc, repo, notifier := testutil.NewTestService(t, nil)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", "s3cret-pass")

	pair, err := svc.Login(ctx, "alice@example.com", "s3cret-pass", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "s3cret-pass", "n3w-l0ng-unguessable!"))

	_, err = svc.Login(ctx, "alice@example.com", "n3w-l0ng-unguessable!", "", "")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice@example.com", "s3cret-pass", "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// Existing sessions survive a password change.
	_, err = svc.Refresh(ctx, pair.RefreshToken, "", "")
	require.NoError(t, err)

	assert.Len(t, notifier.EventsOf(auth.EventPasswordChanged), 1)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, repo, _ := testutil.NewTestService(t, nil)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", "s3cret-pass")

	err := svc.ChangePassword(ctx, user.ID, "wrong", "n3w-l0ng-unguessable!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	svc, _, _ := testutil.NewTestService(t, nil)

	err := svc.ChangePassword(context.Background(), "no-such-user", "x", "n3w-l0ng-unguessable!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	svc, repo, _ := testutil.NewTestService(t, nil)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "alice@example.com", "s3cret-pass")

	err := svc.ChangePassword(ctx, user.ID, "s3cret-pass", "12345678")
	var weak *auth.PasswordValidationError
	assert.ErrorAs(t, err, &weak)
}
