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

func newResetToken(t *testing.T, repo *repository.Repository, userID string, expiresAt time.Time) *models.PasswordResetToken {
	t.Helper()
	token := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		TokenHash: uuid.NewString(),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, repo.CreatePasswordResetToken(context.Background(), token))
	return token
}

func TestGetActivePasswordResetToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	token := newResetToken(t, repo, user.ID, now.Add(time.Hour))

	stored, err := repo.GetActivePasswordResetToken(ctx, token.TokenHash, now)
	require.NoError(t, err)
	assert.Equal(t, token.ID, stored.ID)

	expired := newResetToken(t, repo, user.ID, now.Add(-time.Minute))
	_, err = repo.GetActivePasswordResetToken(ctx, expired.TokenHash, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkPasswordResetTokenUsed_ClaimsOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	token := newResetToken(t, repo, user.ID, now.Add(time.Hour))

	claimed, err := repo.MarkPasswordResetTokenUsed(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.MarkPasswordResetTokenUsed(ctx, token.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestInvalidatePasswordResetTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	other := newUser(t, repo, "bob@example.com")
	now := time.Now().UTC()

	first := newResetToken(t, repo, user.ID, now.Add(time.Hour))
	second := newResetToken(t, repo, user.ID, now.Add(time.Hour))
	foreign := newResetToken(t, repo, other.ID, now.Add(time.Hour))

	invalidated, err := repo.InvalidatePasswordResetTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, invalidated)

	_, err = repo.GetActivePasswordResetToken(ctx, first.TokenHash, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetActivePasswordResetToken(ctx, second.TokenHash, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Another user's token is untouched.
	_, err = repo.GetActivePasswordResetToken(ctx, foreign.TokenHash, now)
	assert.NoError(t, err)
}

func TestPurgeExpiredPasswordResetTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	live := newResetToken(t, repo, user.ID, now.Add(time.Hour))
	newResetToken(t, repo, user.ID, now.Add(-time.Minute))

	removed, err := repo.PurgeExpiredPasswordResetTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = repo.GetActivePasswordResetToken(ctx, live.TokenHash, now)
	assert.NoError(t, err)
}
