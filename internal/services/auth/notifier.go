// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "context"

// Event identifies the kind of notification to deliver.
type Event string

const (
	EventVerification    Event = "verification"
	EventPasswordReset   Event = "password_reset"
	EventPasswordChanged Event = "password_changed"
	EventEmailChange     Event = "email_change"
	EventSecurityAlert   Event = "security_alert"
	EventAccountDeleted  Event = "account_deleted"
)

// Recipient carries the addressee of a notification without exposing the
// full user record to the delivery layer.
type Recipient struct {
	UserID string
	Email  string
}

// Notifier is the external notification collaborator. The core calls it
// after committing state; implementations own their transport and retries.
type Notifier interface {
	Notify(ctx context.Context, event Event, to Recipient, payload map[string]string) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event, Recipient, map[string]string) error { return nil }
