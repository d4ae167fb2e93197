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

// MinPasswordLength is the shortest password the token-consumption endpoints
// accept. Checked before any store mutation.
const MinPasswordLength = 6

// DefaultInvitationTTL is how long an invitation link stays valid.
const DefaultInvitationTTL = 7 * 24 * time.Hour

var (
	ErrInvitationInvalid = errors.New("invitation token is invalid")
	ErrInvitationUsed    = errors.New("invitation has already been used")
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrCoacheeNotFound   = errors.New("coachee not found")
	ErrNotYourCoachee    = errors.New("coachee belongs to a different coach")
	ErrDeliveryFailed    = errors.New("invitation email could not be delivered")
)

// InvitationService owns the invitation token lifecycle: issuance (with
// refresh semantics), delivery with best-effort compensation, and guarded
// single-use consumption.
type InvitationService struct {
	Store   store.Store
	Mailer  Mailer
	BaseURL string        // public origin used to build invitation links
	TTL     time.Duration // zero means DefaultInvitationTTL
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultInvitationTTL
}

// Issue creates or refreshes the invitation for a (coach, coachee) pair and
// returns the stored row alongside the raw token. A refreshed invitation gets
// a new token, a reset "sent" status and a new expiry, so the previous link
// stops resolving. The raw token is never persisted.
func (s *InvitationService) Issue(
	ctx context.Context,
	coachID, coacheeID, email string,
) (domain.Invitation, string, error) {
	log := slogx.FromContext(ctx)

	coachee, err := s.Store.Coachees().GetCoacheeByID(ctx, coacheeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, "", ErrCoacheeNotFound
		}
		log.Error("failed to fetch coachee", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}
	if coachee.CoachID != coachID {
		log.Warn("invitation issuance attempted for another coach's coachee",
			slog.String("coach_id", coachID),
			slog.String("coachee_id", coacheeID),
		)
		return domain.Invitation{}, "", ErrNotYourCoachee
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	inv := domain.Invitation{
		ID:        idx.New().String(),
		CoachID:   coachID,
		CoacheeID: coacheeID,
		Email:     email,
		TokenHash: cryptox.FingerprintToken(token),
		Status:    domain.InvitationStatusSent,
		ExpiresAt: time.Now().UTC().Add(s.ttl()),
	}

	// Upsert plus read-back in one transaction: on refresh the row keeps its
	// original id, and the caller needs the id that actually landed.
	var stored domain.Invitation
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().UpsertInvitation(ctx, inv); err != nil {
			return err
		}
		stored, err = tx.Invitations().GetInvitationByPair(ctx, coachID, coacheeID)
		return err
	})
	if err != nil {
		log.Error("failed to store invitation",
			slog.String("coach_id", coachID),
			slog.String("coachee_id", coacheeID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, "", err
	}

	log.Debug("invitation issued",
		slog.String("invitation_id", stored.ID),
		slog.String("coachee_id", coacheeID),
		slog.Time("expires_at", stored.ExpiresAt),
	)

	return stored, token, nil
}

// Send issues (or refreshes) an invitation and emails the link. When the mail
// send fails the invitation is rolled to "revoked" as a compensating action,
// so no unconfirmed-but-valid token stays live. The revocation is best
// effort: a crash between issuance and delivery can still leave a "sent" row
// whose mail never left.
func (s *InvitationService) Send(
	ctx context.Context,
	coachID, coacheeID, email string,
) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	inv, token, err := s.Issue(ctx, coachID, coacheeID, email)
	if err != nil {
		return domain.Invitation{}, err
	}

	link := fmt.Sprintf("%s/acceso/coachee?token=%s&email=%s",
		s.BaseURL, url.QueryEscape(token), url.QueryEscape(email))

	body := fmt.Sprintf(
		"Tu coach te ha invitado a Quiero.\n\n"+
			"Crea tu contraseña con este enlace (válido hasta %s):\n\n%s\n",
		inv.ExpiresAt.Format("02/01/2006"), link)

	if err := s.Mailer.Send(ctx, email, "Invitación a Quiero", body); err != nil {
		log.Error("invitation delivery failed, revoking token",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		if rerr := s.Store.Invitations().MarkInvitationRevoked(ctx, inv.ID); rerr != nil {
			log.Error("failed to revoke undelivered invitation",
				slog.String("invitation_id", inv.ID),
				slog.Any("error", rerr),
			)
		}
		return domain.Invitation{}, ErrDeliveryFailed
	}

	log.Info("invitation sent",
		slog.String("invitation_id", inv.ID),
		slog.String("coachee_id", coacheeID),
	)

	return inv, nil
}

// SetPasswordByToken consumes an invitation token: it validates the password,
// resolves and checks the token, sets the coachee's initial password and
// marks the invitation used. Each precondition failure maps to a sentinel the
// HTTP layer turns into a status string.
//
// The password set and the mark-used run in one transaction; the mark-used is
// additionally guarded by "used_at IS NULL" so two concurrent consumptions
// cannot both succeed.
func (s *InvitationService) SetPasswordByToken(
	ctx context.Context,
	token, password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if len(password) < MinPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}
	if token == "" {
		return domain.User{}, ErrInvitationInvalid
	}

	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invitation consumption attempted with unknown token")
			return domain.User{}, ErrInvitationInvalid
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.User{}, err
	}

	// A revoked token was never confirmed delivered; treat it as unknown.
	if inv.Status == domain.InvitationStatusRevoked {
		return domain.User{}, ErrInvitationInvalid
	}
	if inv.Consumed() {
		log.Warn("invitation consumption attempted with already-used token",
			slog.String("invitation_id", inv.ID),
		)
		return domain.User{}, ErrInvitationUsed
	}
	if inv.Expired(time.Now().UTC()) {
		return domain.User{}, ErrInvitationExpired
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		coachee, err := tx.Coachees().GetCoacheeByID(ctx, inv.CoacheeID)
		if err != nil {
			return err
		}

		if err := tx.Users().ActivateWithPassword(ctx, coachee.UserID, hash); err != nil {
			return err
		}

		if err := tx.Invitations().MarkInvitationUsed(ctx, inv.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Guard fired: someone consumed the token between our check
				// and this update.
				return ErrInvitationUsed
			}
			return err
		}

		if err := tx.Coachees().UpdateCoacheeStatus(ctx, coachee.ID, domain.CoacheeStatusActive); err != nil {
			return err
		}

		user, err = tx.Users().GetUserByID(ctx, coachee.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvitationUsed) {
			return domain.User{}, ErrInvitationUsed
		}
		log.Error("failed to consume invitation",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.User{}, err
	}

	log.Info("coachee activated via invitation",
		slog.String("invitation_id", inv.ID),
		slog.String("user_id", user.ID),
	)

	return user, nil
}
