// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"github.com/livingdocs/identity/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRefreshToken_Active(t *testing.T) {
	now := time.Now().UTC()

	token := models.RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, token.Active(now))
	assert.False(t, token.Expired(now))

	token.IsRevoked = true
	assert.False(t, token.Active(now))

	expired := models.RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.Expired(now))
	assert.False(t, expired.Active(now))
}
