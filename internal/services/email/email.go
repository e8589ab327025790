// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers account notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/livingdocs/identity/internal/config"
	"github.com/livingdocs/identity/internal/i18n"
	"github.com/livingdocs/identity/internal/services/auth"
	"github.com/wneessen/go-mail"
)

// Notifier implements auth.Notifier by sending localized plain-text emails.
// With an empty SMTP host it runs in debug mode and only logs deliveries,
// which keeps local development working without a mail server.
type Notifier struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// New creates an SMTP notifier. baseURL is the public origin used to build
// action links (e.g. "https://example.com").
func New(cfg *config.SMTPConfig, baseURL string) (*Notifier, error) {
	if cfg.Host != "" && cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Notifier{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Notify renders and delivers the email for the given event.
func (n *Notifier) Notify(ctx context.Context, event auth.Event, to auth.Recipient, payload map[string]string) error {
	subject, body, err := n.render(ctx, event, payload)
	if err != nil {
		return err
	}

	if n.cfg.Host == "" {
		slog.Info("email_debug_delivery", "event", string(event), "to", to.Email, "subject", subject)
		return nil
	}

	return n.send(to.Email, subject, body)
}

func (n *Notifier) render(ctx context.Context, event auth.Event, payload map[string]string) (string, string, error) {
	switch event {
	case auth.EventVerification:
		return i18n.T(ctx, "email_verification_subject"),
			i18n.TData(ctx, "email_verification_body", map[string]any{
				"ActionURL": n.actionURL("/auth/verify-email", payload["token"]),
			}), nil
	case auth.EventEmailChange:
		return i18n.T(ctx, "email_change_subject"),
			i18n.TData(ctx, "email_change_body", map[string]any{
				"ActionURL": n.actionURL("/auth/verify-email", payload["token"]),
			}), nil
	case auth.EventPasswordReset:
		return i18n.T(ctx, "password_reset_subject"),
			i18n.TData(ctx, "password_reset_body", map[string]any{
				"ActionURL": n.actionURL("/auth/reset-password", payload["token"]),
			}), nil
	case auth.EventPasswordChanged:
		return i18n.T(ctx, "password_changed_subject"), i18n.T(ctx, "password_changed_body"), nil
	case auth.EventSecurityAlert:
		return i18n.T(ctx, "security_alert_subject"), i18n.T(ctx, "security_alert_body"), nil
	case auth.EventAccountDeleted:
		return i18n.T(ctx, "account_deleted_subject"), i18n.T(ctx, "account_deleted_body"), nil
	default:
		return "", "", fmt.Errorf("unknown notification event %q", event)
	}
}

func (n *Notifier) actionURL(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", n.baseURL, path, url.QueryEscape(token))
}

// send delivers an email via SMTP using go-mail.
func (n *Notifier) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if n.cfg.FromName != "" {
		if err := msg.FromFormat(n.cfg.FromName, n.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(n.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
	}

	if n.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS for port 465, STARTTLS otherwise.
		if n.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if n.cfg.Username != "" && n.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
