package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/cryptox"
	"github.com/quierolab/quiero/pkg/idx"
	"github.com/quierolab/quiero/pkg/slogx"
)

// DefaultResetTTL is how long a password reset link stays valid.
const DefaultResetTTL = 60 * time.Minute

var (
	ErrResetInvalid = errors.New("reset token is invalid")
	ErrResetUsed    = errors.New("reset has already been used")
	ErrResetExpired = errors.New("reset has expired")
)

// PasswordResetService issues and consumes password reset tokens. Requests
// are intentionally neutral: the caller cannot learn whether an email has an
// account.
type PasswordResetService struct {
	Store   store.Store
	Mailer  Mailer
	BaseURL string
	TTL     time.Duration // zero means DefaultResetTTL
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultResetTTL
}

// Request mints a reset token for the account behind email and mails the
// link. Unknown or inactive addresses return nil without sending anything,
// so the response is identical either way.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("password reset requested for unknown email")
			return nil
		}
		log.Error("failed to fetch user for reset", slog.Any("error", err))
		return err
	}
	if !user.Active {
		log.Debug("password reset requested for inactive account",
			slog.String("user_id", user.ID),
		)
		return nil
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return err
	}

	reset := domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: time.Now().UTC().Add(s.ttl()),
	}
	if err := s.Store.PasswordResets().CreatePasswordReset(ctx, reset); err != nil {
		log.Error("failed to store password reset",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return err
	}

	link := fmt.Sprintf("%s/restablecer?token=%s", s.BaseURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"Solicitaste restablecer tu contraseña de Quiero.\n\n"+
			"Usa este enlace dentro de los próximos %d minutos:\n\n%s\n\n"+
			"Si no fuiste tú, ignora este correo.\n",
		int(s.ttl().Minutes()), link)

	if err := s.Mailer.Send(ctx, email, "Restablece tu contraseña", body); err != nil {
		log.Error("reset delivery failed",
			slog.String("reset_id", reset.ID),
			slog.Any("error", err),
		)
		// Still neutral to the caller; the token simply expires unused.
		return nil
	}

	log.Info("password reset sent", slog.String("user_id", user.ID))
	return nil
}

// Redeem consumes a reset token, replaces the user's password and revokes
// every outstanding refresh token so stolen sessions die with the old
// password.
func (s *PasswordResetService) Redeem(ctx context.Context, token, password string) error {
	log := slogx.FromContext(ctx)

	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if token == "" {
		return ErrResetInvalid
	}

	reset, err := s.Store.PasswordResets().GetPasswordResetByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("reset redemption attempted with unknown token")
			return ErrResetInvalid
		}
		log.Error("failed to fetch password reset", slog.Any("error", err))
		return err
	}

	if reset.Consumed() {
		return ErrResetUsed
	}
	if reset.Expired(time.Now().UTC()) {
		return ErrResetExpired
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
			return err
		}
		if err := tx.PasswordResets().MarkPasswordResetUsed(ctx, reset.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrResetUsed
			}
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, reset.UserID)
	})
	if err != nil {
		if errors.Is(err, ErrResetUsed) {
			return ErrResetUsed
		}
		log.Error("failed to redeem password reset",
			slog.String("reset_id", reset.ID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("password reset redeemed", slog.String("user_id", reset.UserID))
	return nil
}
