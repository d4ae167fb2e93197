// Package mail holds outbound mail delivery implementations.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/quierolab/quiero/pkg/slogx"
)

// SendGridMailer delivers mail through the SendGrid v3 API. It satisfies
// service.Mailer.
type SendGridMailer struct {
	client   *sendgrid.Client
	from     *sgmail.Email
	fromAddr string
}

// NewSendGridMailer builds a mailer. fromName is the display name on
// outgoing mail.
func NewSendGridMailer(apiKey, fromName, fromAddr string) (*SendGridMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mail: sendgrid api key is empty")
	}
	if fromAddr == "" {
		return nil, fmt.Errorf("mail: from address is empty")
	}
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     sgmail.NewEmail(fromName, fromAddr),
		fromAddr: fromAddr,
	}, nil
}

// Send delivers a plain-text message. The HTML part is a minimal wrapper so
// clients that refuse text/plain still render something readable.
func (m *SendGridMailer) Send(ctx context.Context, to, subject, body string) error {
	log := slogx.FromContext(ctx)

	if to == "" {
		return fmt.Errorf("mail: to address is empty")
	}

	msg := sgmail.NewSingleEmail(
		m.from,
		subject,
		sgmail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		log.Error("sendgrid rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("body", resp.Body),
		)
		return fmt.Errorf("mail: sendgrid send failed with status %d", resp.StatusCode)
	}

	log.Debug("mail accepted by sendgrid",
		slog.Int("status", resp.StatusCode),
		slog.String("subject", subject),
	)
	return nil
}
