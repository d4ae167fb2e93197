package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/pkg/cryptox"
)

func TestIssueRotatesToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachID := seedCoach(t, st, "coach@example.com")
	coachee := seedCoachee(t, st, coachID, "nina@example.com")

	svc := testInvitationService(st, &captureMailer{})

	first, firstToken, err := svc.Issue(ctx, coachID, coachee.ID, coachee.Email)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusSent, first.Status)
	require.NotEmpty(t, firstToken)

	second, secondToken, err := svc.Issue(ctx, coachID, coachee.ID, coachee.Email)
	require.NoError(t, err)
	require.NotEqual(t, firstToken, secondToken)
	// Same pair, same row: the reissue keeps the original id.
	require.Equal(t, first.ID, second.ID)

	// The superseded token no longer resolves.
	_, err = svc.SetPasswordByToken(ctx, firstToken, "secret123")
	require.ErrorIs(t, err, ErrInvitationInvalid)

	// The fresh one does.
	user, err := svc.SetPasswordByToken(ctx, secondToken, "secret123")
	require.NoError(t, err)
	require.True(t, user.Active)
}

func TestIssueRejectsForeignCoachee(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachA := seedCoach(t, st, "a@example.com")
	coachB := seedCoach(t, st, "b@example.com")
	coachee := seedCoachee(t, st, coachA, "nina@example.com")

	svc := testInvitationService(st, &captureMailer{})

	_, _, err := svc.Issue(ctx, coachB, coachee.ID, coachee.Email)
	require.ErrorIs(t, err, ErrNotYourCoachee)
}

func TestSendDeliversLink(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachID := seedCoach(t, st, "coach@example.com")
	coachee := seedCoachee(t, st, coachID, "nina@example.com")

	mailer := &captureMailer{}
	svc := testInvitationService(st, mailer)

	inv, err := svc.Send(ctx, coachID, coachee.ID, coachee.Email)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusSent, inv.Status)
	require.Equal(t, 1, mailer.count())

	sent := mailer.sent[0]
	require.Equal(t, "nina@example.com", sent.To)
	require.Contains(t, sent.Body, "https://quexample.test/acceso/coachee?token=", "link points at the coachee access page")
}

func TestSendRevokesOnDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachID := seedCoach(t, st, "coach@example.com")
	coachee := seedCoachee(t, st, coachID, "nina@example.com")

	mailer := &captureMailer{fail: true}
	svc := testInvitationService(st, mailer)

	_, err := svc.Send(ctx, coachID, coachee.ID, coachee.Email)
	require.ErrorIs(t, err, ErrDeliveryFailed)

	// The compensating revoke landed: the row exists but is revoked.
	inv, err := st.Invitations().GetInvitationByPair(ctx, coachID, coachee.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusRevoked, inv.Status)
}

func TestSetPasswordByToken(t *testing.T) {
	newRedeemable := func(t *testing.T) (*InvitationService, string, domain.Coachee) {
		st := newTestStore(t)
		coachID := seedCoach(t, st, "coach@example.com")
		coachee := seedCoachee(t, st, coachID, "nina@example.com")
		svc := testInvitationService(st, &captureMailer{})
		_, token, err := svc.Issue(context.Background(), coachID, coachee.ID, coachee.Email)
		require.NoError(t, err)
		return svc, token, coachee
	}

	t.Run("activates the account and marks the coachee active", func(t *testing.T) {
		ctx := context.Background()
		svc, token, coachee := newRedeemable(t)

		user, err := svc.SetPasswordByToken(ctx, token, "secret123")
		require.NoError(t, err)
		require.True(t, user.Active)
		require.NoError(t, cryptox.VerifyPassword("secret123", user.PasswordHash))

		updated, err := svc.Store.Coachees().GetCoacheeByID(ctx, coachee.ID)
		require.NoError(t, err)
		require.Equal(t, domain.CoacheeStatusActive, updated.Status)

		inv, err := svc.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
		require.NoError(t, err)
		require.Equal(t, domain.InvitationStatusUsed, inv.Status)
		require.NotNil(t, inv.UsedAt)
	})

	t.Run("second consumption fails as used", func(t *testing.T) {
		ctx := context.Background()
		svc, token, _ := newRedeemable(t)

		_, err := svc.SetPasswordByToken(ctx, token, "secret123")
		require.NoError(t, err)

		_, err = svc.SetPasswordByToken(ctx, token, "other-secret")
		require.ErrorIs(t, err, ErrInvitationUsed)
	})

	t.Run("short password rejected before any mutation", func(t *testing.T) {
		ctx := context.Background()
		svc, token, _ := newRedeemable(t)

		_, err := svc.SetPasswordByToken(ctx, token, "12345")
		require.ErrorIs(t, err, ErrPasswordTooShort)

		// Token still live afterwards.
		_, err = svc.SetPasswordByToken(ctx, token, "123456")
		require.NoError(t, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		ctx := context.Background()
		st := newTestStore(t)
		coachID := seedCoach(t, st, "coach@example.com")
		coachee := seedCoachee(t, st, coachID, "nina@example.com")

		svc := testInvitationService(st, &captureMailer{})
		svc.TTL = -time.Minute // already past expiry on issue

		_, token, err := svc.Issue(ctx, coachID, coachee.ID, coachee.Email)
		require.NoError(t, err)

		_, err = svc.SetPasswordByToken(ctx, token, "secret123")
		require.ErrorIs(t, err, ErrInvitationExpired)
	})

	t.Run("revoked token treated as invalid", func(t *testing.T) {
		ctx := context.Background()
		svc, token, _ := newRedeemable(t)

		inv, err := svc.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
		require.NoError(t, err)
		require.NoError(t, svc.Store.Invitations().MarkInvitationRevoked(ctx, inv.ID))

		_, err = svc.SetPasswordByToken(ctx, token, "secret123")
		require.ErrorIs(t, err, ErrInvitationInvalid)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		svc, _, _ := newRedeemable(t)

		_, err := svc.SetPasswordByToken(context.Background(), "not-a-token", "secret123")
		require.ErrorIs(t, err, ErrInvitationInvalid)

		_, err = svc.SetPasswordByToken(context.Background(), "", "secret123")
		require.ErrorIs(t, err, ErrInvitationInvalid)
	})
}

func TestInvitationLinkEscapesEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachID := seedCoach(t, st, "coach@example.com")
	coachee := seedCoachee(t, st, coachID, "nina+test@example.com")

	mailer := &captureMailer{}
	svc := testInvitationService(st, mailer)

	_, err := svc.Send(ctx, coachID, coachee.ID, coachee.Email)
	require.NoError(t, err)
	require.Equal(t, 1, mailer.count())
	require.True(t, strings.Contains(mailer.sent[0].Body, "email=nina%2Btest%40example.com"))
}
