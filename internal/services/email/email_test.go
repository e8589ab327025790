// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"context"
	"testing"

	"github.com/livingdocs/identity/internal/config"
	"github.com/livingdocs/identity/internal/i18n"
	"github.com/livingdocs/identity/internal/services/auth"
	"github.com/livingdocs/identity/internal/services/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresFromWithHost(t *testing.T) {
	_, err := email.New(&config.SMTPConfig{Host: "smtp.example.com"}, "https://example.com")
	assert.Error(t, err)
}

func TestNew_DebugModeWithoutHost(t *testing.T) {
	n, err := email.New(&config.SMTPConfig{}, "https://example.com/")
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestNotify_DebugModeDoesNotDial(t *testing.T) {
	require.NoError(t, i18n.Init())

	n, err := email.New(&config.SMTPConfig{}, "https://example.com")
	require.NoError(t, err)

	events := []auth.Event{
		auth.EventVerification,
		auth.EventEmailChange,
		auth.EventPasswordReset,
		auth.EventPasswordChanged,
		auth.EventSecurityAlert,
		auth.EventAccountDeleted,
	}
	for _, event := range events {
		err := n.Notify(context.Background(), event, auth.Recipient{Email: "user@example.com"},
			map[string]string{"token": "tok-123"})
		assert.NoError(t, err, "event %s", event)
	}
}

func TestNotify_UnknownEvent(t *testing.T) {
	require.NoError(t, i18n.Init())

	n, err := email.New(&config.SMTPConfig{}, "https://example.com")
	require.NoError(t, err)

	err = n.Notify(context.Background(), auth.Event("bogus"), auth.Recipient{Email: "user@example.com"}, nil)
	assert.Error(t, err)
}
