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

func newVerificationToken(t *testing.T, repo *repository.Repository, userID, kind string, newEmail *string) *models.VerificationToken {
	t.Helper()
	token := &models.VerificationToken{
		ID:        uuid.NewString(),
		TokenHash: uuid.NewString(),
		UserID:    userID,
		TokenType: kind,
		NewEmail:  newEmail,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, repo.CreateVerificationToken(context.Background(), token))
	return token
}

func TestGetActiveVerificationToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	token := newVerificationToken(t, repo, user.ID, models.TokenKindEmailVerification, nil)

	stored, err := repo.GetActiveVerificationToken(ctx, token.TokenHash, now)
	require.NoError(t, err)
	assert.Equal(t, token.ID, stored.ID)
	assert.Equal(t, models.TokenKindEmailVerification, stored.TokenType)

	_, err = repo.GetActiveVerificationToken(ctx, "no-such-hash", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetActiveVerificationToken_ExcludesExpired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	token := &models.VerificationToken{
		ID:        uuid.NewString(),
		TokenHash: uuid.NewString(),
		UserID:    user.ID,
		TokenType: models.TokenKindEmailVerification,
		ExpiresAt: now.Add(-time.Minute),
	}
	require.NoError(t, repo.CreateVerificationToken(ctx, token))

	_, err := repo.GetActiveVerificationToken(ctx, token.TokenHash, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkVerificationTokenUsed_ClaimsOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	token := newVerificationToken(t, repo, user.ID, models.TokenKindEmailVerification, nil)

	claimed, err := repo.MarkVerificationTokenUsed(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.MarkVerificationTokenUsed(ctx, token.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	_, err = repo.GetActiveVerificationToken(ctx, token.TokenHash, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInvalidateVerificationTokens_ScopedToKind(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	verification := newVerificationToken(t, repo, user.ID, models.TokenKindEmailVerification, nil)
	pending := "alice@new.example.com"
	change := newVerificationToken(t, repo, user.ID, models.TokenKindEmailChange, &pending)

	invalidated, err := repo.InvalidateVerificationTokens(ctx, user.ID, models.TokenKindEmailVerification)
	require.NoError(t, err)
	assert.EqualValues(t, 1, invalidated)

	_, err = repo.GetActiveVerificationToken(ctx, verification.TokenHash, now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The email-change token of the other kind stays consumable.
	stored, err := repo.GetActiveVerificationToken(ctx, change.TokenHash, now)
	require.NoError(t, err)
	require.NotNil(t, stored.NewEmail)
	assert.Equal(t, pending, *stored.NewEmail)
}

func TestPurgeExpiredVerificationTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := newUser(t, repo, "alice@example.com")
	now := time.Now().UTC()

	newVerificationToken(t, repo, user.ID, models.TokenKindEmailVerification, nil)
	expired := &models.VerificationToken{
		ID:        uuid.NewString(),
		TokenHash: uuid.NewString(),
		UserID:    user.ID,
		TokenType: models.TokenKindEmailVerification,
		ExpiresAt: now.Add(-time.Minute),
	}
	require.NoError(t, repo.CreateVerificationToken(ctx, expired))

	removed, err := repo.PurgeExpiredVerificationTokens(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}
