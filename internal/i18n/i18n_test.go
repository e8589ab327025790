// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"github.com/livingdocs/identity/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	require.NoError(t, i18n.Init())
}

func TestT_DefaultsToEnglish(t *testing.T) {
	require.NoError(t, i18n.Init())

	msg := i18n.T(context.Background(), "password_reset_subject")
	assert.Equal(t, "Reset your password", msg)
}

func TestT_German(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.German)
	msg := i18n.T(ctx, "password_reset_subject")
	assert.Equal(t, "Passwort zurücksetzen", msg)
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())

	msg := i18n.TData(context.Background(), "email_verification_body", map[string]any{
		"ActionURL": "https://example.com/verify?token=abc",
	})
	assert.Contains(t, msg, "https://example.com/verify?token=abc")
}

func TestT_UnknownMessageID(t *testing.T) {
	require.NoError(t, i18n.Init())

	assert.Equal(t, "does_not_exist", i18n.T(context.Background(), "does_not_exist"))
}

func TestMatchLanguage(t *testing.T) {
	require.NoError(t, i18n.Init())

	assert.Equal(t, language.German, i18n.MatchLanguage("de-DE,de;q=0.9"))
	assert.Equal(t, language.English, i18n.MatchLanguage("fr-FR"))
}

func TestGetLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	assert.Equal(t, "en", i18n.GetLocale(context.Background()))
	ctx := i18n.WithLocale(context.Background(), language.German)
	assert.Equal(t, "de", i18n.GetLocale(ctx))
}
