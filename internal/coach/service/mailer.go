package service

import "context"

// Mailer delivers transactional mail. Implementations live outside the
// service layer (see internal/coach/mail).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
