package mail

import (
	"context"
	"log/slog"

	"github.com/quierolab/quiero/pkg/slogx"
)

// LogMailer writes mail to the log instead of sending it. Used in local
// development when no SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("mail (log only)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
