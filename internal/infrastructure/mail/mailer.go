package mail

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/onboarding-api/internal/api/metrics"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport hands a rendered message to the outside world.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Mailer renders templated emails and delivers them through a Transport.
type Mailer struct {
	renderer  *Renderer
	transport Transport
	log       zerolog.Logger
}

func NewMailer(renderer *Renderer, transport Transport, log zerolog.Logger) *Mailer {
	return &Mailer{renderer: renderer, transport: transport, log: log}
}

func (m *Mailer) Send(ctx context.Context, email ports.Email) error {
	start := time.Now()
	defer func() {
		metrics.EmailSendDuration.WithLabelValues(email.Template).Observe(time.Since(start).Seconds())
	}()

	html, text, err := m.renderer.Render(email.Template, email.Data)
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(email.Template, "failed").Inc()
		return err
	}

	err = m.transport.Deliver(ctx, Message{
		To:      email.To,
		Subject: email.Subject,
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		metrics.EmailsTotal.WithLabelValues(email.Template, "failed").Inc()
		return err
	}

	metrics.EmailsTotal.WithLabelValues(email.Template, "sent").Inc()
	m.log.Debug().Str("template", email.Template).Str("to", email.To).Msg("email sent")
	return nil
}
