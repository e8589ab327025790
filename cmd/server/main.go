// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"os"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/livingdocs/identity/internal/server"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// sources creates a value source chain combining env vars and TOML config
func sources(envKey, tomlKey string, tomlSrc altsrc.Sourcer) cli.ValueSourceChain {
	chain := cli.EnvVars(envKey)
	chain.Chain = append(chain.Chain, toml.TOML(tomlKey, tomlSrc))
	return chain
}

func main() {
	var configFile string

	tomlSrc := altsrc.NewStringPtrSourcer(&configFile)

	cmd := &cli.Command{
		Name:    "identity",
		Usage:   "Credential and session lifecycle service",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags: []cli.Flag{
			// Config file
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Value:       "config.toml",
				Usage:       "Path to configuration file",
				Destination: &configFile,
				Sources:     cli.EnvVars("CONFIG"),
			},

			// Server settings
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "Server host",
				Sources: sources("HOST", "server.host", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "Server port",
				Sources: sources("PORT", "server.port", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Value:   "http://localhost:8080",
				Usage:   "Public base URL used in notification links",
				Sources: sources("BASE_URL", "server.base_url", tomlSrc),
			},

			// Database
			&cli.StringFlag{
				Name:    "database-dsn",
				Value:   "./data/identity.db",
				Usage:   "SQLite database path",
				Sources: sources("DATABASE_DSN", "database.dsn", tomlSrc),
			},

			// Tokens
			&cli.StringFlag{
				Name:    "secret-key",
				Usage:   "HMAC secret for signing access tokens",
				Sources: sources("SECRET_KEY", "auth.secret_key", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "token-issuer",
				Value:   "identity",
				Usage:   "Issuer claim on access tokens",
				Sources: sources("TOKEN_ISSUER", "auth.token_issuer", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "access-token-minutes",
				Value:   15,
				Usage:   "Access token lifetime in minutes",
				Sources: sources("ACCESS_TOKEN_MINUTES", "auth.access_token_minutes", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "refresh-token-days",
				Value:   7,
				Usage:   "Refresh token lifetime in days",
				Sources: sources("REFRESH_TOKEN_DAYS", "auth.refresh_token_days", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "verification-token-hours",
				Value:   24,
				Usage:   "Email verification token lifetime in hours",
				Sources: sources("VERIFICATION_TOKEN_HOURS", "auth.verification_token_hours", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "password-reset-token-hours",
				Value:   1,
				Usage:   "Password reset token lifetime in hours",
				Sources: sources("PASSWORD_RESET_TOKEN_HOURS", "auth.password_reset_token_hours", tomlSrc),
			},

			// Account policy
			&cli.IntFlag{
				Name:    "max-login-attempts",
				Value:   5,
				Usage:   "Failed logins before the account is locked",
				Sources: sources("MAX_LOGIN_ATTEMPTS", "auth.max_login_attempts", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "lockout-minutes",
				Value:   30,
				Usage:   "Account lock duration in minutes",
				Sources: sources("LOCKOUT_MINUTES", "auth.lockout_minutes", tomlSrc),
			},
			&cli.BoolFlag{
				Name:    "require-email-verification",
				Usage:   "Require a verified email before login",
				Sources: sources("REQUIRE_EMAIL_VERIFICATION", "auth.require_email_verification", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "purge-deactivated-days",
				Value:   30,
				Usage:   "Days before deactivated accounts are purged",
				Sources: sources("PURGE_DEACTIVATED_DAYS", "auth.purge_deactivated_days", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "sweep-interval-minutes",
				Value:   60,
				Usage:   "Minutes between background cleanup sweeps",
				Sources: sources("SWEEP_INTERVAL_MINUTES", "auth.sweep_interval_minutes", tomlSrc),
			},

			// SMTP
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP host (empty disables delivery, emails are logged)",
				Sources: sources("SMTP_HOST", "smtp.host", tomlSrc),
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Value:   587,
				Usage:   "SMTP port",
				Sources: sources("SMTP_PORT", "smtp.port", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Usage:   "SMTP username",
				Sources: sources("SMTP_USERNAME", "smtp.username", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "SMTP password",
				Sources: sources("SMTP_PASSWORD", "smtp.password", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-from",
				Usage:   "From address for notification emails",
				Sources: sources("SMTP_FROM", "smtp.from", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "smtp-from-name",
				Usage:   "Display name for the from address",
				Sources: sources("SMTP_FROM_NAME", "smtp.from_name", tomlSrc),
			},
			&cli.BoolFlag{
				Name:    "smtp-tls",
				Value:   true,
				Usage:   "Use TLS for SMTP",
				Sources: sources("SMTP_TLS", "smtp.tls", tomlSrc),
			},

			// TLS
			&cli.StringFlag{
				Name:    "tls-mode",
				Value:   "auto",
				Usage:   "TLS mode: auto, off, acme, selfsigned, manual",
				Sources: sources("TLS_MODE", "tls.mode", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "tls-email",
				Usage:   "ACME account email",
				Sources: sources("TLS_EMAIL", "tls.email", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "tls-cert-dir",
				Value:   "./data/certs",
				Usage:   "Directory for generated certificates",
				Sources: sources("TLS_CERT_DIR", "tls.cert_dir", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "tls-cert-file",
				Usage:   "TLS certificate file (manual mode)",
				Sources: sources("TLS_CERT_FILE", "tls.cert_file", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "tls-key-file",
				Usage:   "TLS key file (manual mode)",
				Sources: sources("TLS_KEY_FILE", "tls.key_file", tomlSrc),
			},

			// Logging
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: debug, info, warn, error",
				Sources: sources("LOG_LEVEL", "log.level", tomlSrc),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format: text, json",
				Sources: sources("LOG_FORMAT", "log.format", tomlSrc),
			},
		},
		Action: server.Run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
