package ports

import "context"

// Email template names.
const (
	TemplateWelcome           = "welcome"
	TemplateEmailVerification = "email-verification"
	TemplatePasswordReset     = "password-reset"
	TemplatePasswordChanged   = "password-changed"
)

// Email is a templated message addressed to a single recipient.
type Email struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Mailer delivers an email synchronously.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// MailQueue accepts emails for best-effort background delivery.
type MailQueue interface {
	Enqueue(email Email)
}
