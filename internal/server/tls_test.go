// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livingdocs/identity/internal/config"
)

func TestSetupTLS_OffOnLocalhost(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = "localhost"

	result, err := SetupTLS(cfg)
	require.NoError(t, err)
	assert.Equal(t, TLSModeOff, result.Mode)
	assert.Nil(t, result.TLSConfig)
}

func TestSetupTLS_SelfSignedGeneratesCert(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = "identity.example.com"
	cfg.TLS.Mode = "selfsigned"
	cfg.TLS.CertDir = t.TempDir()

	result, err := SetupTLS(cfg)
	require.NoError(t, err)
	assert.Equal(t, TLSModeSelfSigned, result.Mode)
	require.NotNil(t, result.TLSConfig)
	assert.NotEmpty(t, result.TLSConfig.Certificates)

	assert.FileExists(t, filepath.Join(cfg.TLS.CertDir, "selfsigned", "cert.pem"))
	assert.FileExists(t, filepath.Join(cfg.TLS.CertDir, "selfsigned", "key.pem"))

	// A second call reuses the freshly generated certificate.
	again, err := SetupTLS(cfg)
	require.NoError(t, err)
	assert.Equal(t, TLSModeSelfSigned, again.Mode)
}

func TestSetupTLS_ManualRequiresFiles(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = "identity.example.com"
	cfg.TLS.Mode = "manual"

	_, err := SetupTLS(cfg)
	assert.Error(t, err)
}

func TestResolveTLSMode_Explicit(t *testing.T) {
	for mode, want := range map[string]TLSMode{
		"off":        TLSModeOff,
		"acme":       TLSModeACME,
		"selfsigned": TLSModeSelfSigned,
		"manual":     TLSModeManual,
	} {
		cfg := &config.Config{}
		cfg.Server.Host = "identity.example.com"
		cfg.TLS.Mode = mode
		assert.Equal(t, want, resolveTLSMode(cfg), "mode %s", mode)
	}
}

func TestResolveTLSMode_AutoPrefersManualCerts(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = "identity.example.com"
	cfg.TLS.CertFile = "cert.pem"
	cfg.TLS.KeyFile = "key.pem"

	assert.Equal(t, TLSModeManual, resolveTLSMode(cfg))
}
