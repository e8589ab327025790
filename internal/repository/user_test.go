// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/livingdocs/identity/internal/models"
	"github.com/livingdocs/identity/internal/repository"
	"github.com/livingdocs/identity/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestCreateUser_GeneratesIDAndTimestamps(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := newUser(t, repo, "alice@example.com")
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.PasswordChangedAt.IsZero())

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsVerified)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	newUser(t, repo, "alice@example.com")
	err := repo.CreateUser(context.Background(), &models.User{
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	assert.Error(t, err)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")

	locked := time.Now().UTC().Add(30 * time.Minute)
	user.FailedLoginAttempts = 5
	user.LockedUntil = &locked
	user.IsVerified = true
	require.NoError(t, repo.UpdateUser(ctx, user))

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)
	assert.WithinDuration(t, locked, *stored.LockedUntil, time.Second)
	assert.True(t, stored.IsVerified)
}

func TestUpdateUserPassword_StampsChangedAt(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	before := user.PasswordChangedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.UpdateUserPassword(ctx, user.ID, "new-hash"))

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.True(t, stored.PasswordChangedAt.After(before))
}

func TestUpdateUserEmail_SwapsAndVerifies(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")

	require.NoError(t, repo.UpdateUserEmail(ctx, user.ID, "alice@new.example.com"))

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", stored.Email)
	assert.True(t, stored.IsVerified)
}

func TestDeleteUser_CascadesTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")

	require.NoError(t, repo.CreateRefreshToken(ctx, &models.RefreshToken{
		ID:        uuid.NewString(),
		TokenHash: "rt-hash",
		UserID:    user.ID,
		FamilyID:  uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	_, err := repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetRefreshTokenByHash(ctx, "rt-hash")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListUsersDeactivatedBefore(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	old := newUser(t, repo, "old@example.com")
	recent := newUser(t, repo, "recent@example.com")
	newUser(t, repo, "active@example.com")

	longAgo := time.Now().UTC().Add(-40 * 24 * time.Hour)
	old.DeactivatedAt = &longAgo
	old.IsActive = false
	require.NoError(t, repo.UpdateUser(ctx, old))

	justNow := time.Now().UTC()
	recent.DeactivatedAt = &justNow
	recent.IsActive = false
	require.NoError(t, repo.UpdateUser(ctx, recent))

	users, err := repo.ListUsersDeactivatedBefore(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, old.ID, users[0].ID)
}

func TestCountUsers(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	newUser(t, repo, "alice@example.com")
	newUser(t, repo, "bob@example.com")

	count, err = repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
