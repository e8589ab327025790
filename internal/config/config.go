// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package config holds the runtime configuration assembled from CLI flags,
// environment variables, and the TOML config file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	TLS      TLSConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host    string
	Port    int
	BaseURL string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// AuthConfig carries the credential and session lifecycle policy knobs.
type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	SecretKey                string        // HMAC secret for access tokens
	Issuer                   string        // iss claim on access tokens
	AccessTokenTTL           time.Duration // default 15m
	RefreshTokenTTL          time.Duration // default 7 days
	VerificationTokenTTL     time.Duration // default 24h
	PasswordResetTokenTTL    time.Duration // default 1h
	MaxLoginAttempts         int           // failures before lockout, default 5
	LockoutDuration          time.Duration // default 30m
	RequireEmailVerification bool
	PurgeDeactivatedAfter    time.Duration // default 30 days
	SweepInterval            time.Duration // background purge cadence
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

// TLSConfig controls how the server terminates TLS.
type TLSConfig struct {
	Mode     string // auto, off, acme, selfsigned, manual
	Email    string // ACME account email
	CertDir  string // cache directory for generated certificates
	CertFile string
	KeyFile  string
}

// IsLocalhost reports whether the host is a local development address.
func IsLocalhost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1", "":
		return true
	}
	return false
}

// NewFromCLI builds the configuration from a parsed CLI command.
func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		Server: ServerConfig{
			Host:    cmd.String("host"),
			Port:    int(cmd.Int("port")),
			BaseURL: cmd.String("base-url"),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Auth: AuthConfig{
			SecretKey:                cmd.String("secret-key"),
			Issuer:                   cmd.String("token-issuer"),
			AccessTokenTTL:           time.Duration(cmd.Int("access-token-minutes")) * time.Minute,
			RefreshTokenTTL:          time.Duration(cmd.Int("refresh-token-days")) * 24 * time.Hour,
			VerificationTokenTTL:     time.Duration(cmd.Int("verification-token-hours")) * time.Hour,
			PasswordResetTokenTTL:    time.Duration(cmd.Int("password-reset-token-hours")) * time.Hour,
			MaxLoginAttempts:         int(cmd.Int("max-login-attempts")),
			LockoutDuration:          time.Duration(cmd.Int("lockout-minutes")) * time.Minute,
			RequireEmailVerification: cmd.Bool("require-email-verification"),
			PurgeDeactivatedAfter:    time.Duration(cmd.Int("purge-deactivated-days")) * 24 * time.Hour,
			SweepInterval:            time.Duration(cmd.Int("sweep-interval-minutes")) * time.Minute,
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		TLS: TLSConfig{
			Mode:     cmd.String("tls-mode"),
			Email:    cmd.String("tls-email"),
			CertDir:  cmd.String("tls-cert-dir"),
			CertFile: cmd.String("tls-cert-file"),
			KeyFile:  cmd.String("tls-key-file"),
		},
	}
}

// Validate checks settings that have no sane default.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return errors.New("config: secret-key is required")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("config: access token TTL must be positive")
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("config: refresh token TTL must be positive")
	}
	if c.Auth.MaxLoginAttempts <= 0 {
		return errors.New("config: max login attempts must be positive")
	}
	return nil
}
