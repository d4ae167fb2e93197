package service

import (
	"context"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/internal/coach/store"
)

var resetLinkRe = regexp.MustCompile(`/restablecer\?token=([A-Za-z0-9_%-]+)`)

// tokenFromResetMail pulls the raw token out of the emailed link.
func tokenFromResetMail(t *testing.T, body string) string {
	t.Helper()

	m := resetLinkRe.FindStringSubmatch(body)
	require.Len(t, m, 2, "mail body should contain a reset link")
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return token
}

func newResetService(st store.Store, m Mailer) *PasswordResetService {
	return &PasswordResetService{
		Store:   st,
		Mailer:  m,
		BaseURL: "https://quexample.test",
		TTL:     time.Hour,
	}
}

func TestRequestIsNeutral(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedCoach(t, st, "coach@example.com")

	mailer := &captureMailer{}
	svc := newResetService(st, mailer)

	// Unknown address: success, nothing sent.
	require.NoError(t, svc.Request(ctx, "nobody@example.com"))
	require.Equal(t, 0, mailer.count())

	// Inactive account: success, nothing sent.
	coachID := seedCoach(t, st, "other@example.com")
	coachee := seedCoachee(t, st, coachID, "nina@example.com")
	_ = coachee
	require.NoError(t, svc.Request(ctx, "nina@example.com"))
	require.Equal(t, 0, mailer.count())

	// Known active address: success, mail sent.
	require.NoError(t, svc.Request(ctx, "coach@example.com"))
	require.Equal(t, 1, mailer.count())
}

func TestRedeemReplacesPasswordAndKillsSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedCoach(t, st, "coach@example.com")

	auth := newAuthService(t, st)
	pair, err := auth.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)

	mailer := &captureMailer{}
	svc := newResetService(st, mailer)

	require.NoError(t, svc.Request(ctx, "coach@example.com"))
	token := tokenFromResetMail(t, mailer.sent[0].Body)

	require.NoError(t, svc.Redeem(ctx, token, "brand-new-pass"))

	// Old password gone, new one works.
	_, err = auth.Login(ctx, "coach@example.com", "coach-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "coach@example.com", "brand-new-pass")
	require.NoError(t, err)

	// Refresh tokens issued before the reset are revoked.
	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRedeemRejections(t *testing.T) {
	ctx := context.Background()

	newIssued := func(t *testing.T) (*PasswordResetService, string) {
		st := newTestStore(t)
		seedCoach(t, st, "coach@example.com")
		mailer := &captureMailer{}
		svc := newResetService(st, mailer)
		require.NoError(t, svc.Request(ctx, "coach@example.com"))
		return svc, tokenFromResetMail(t, mailer.sent[0].Body)
	}

	t.Run("double redemption fails as used", func(t *testing.T) {
		svc, token := newIssued(t)

		require.NoError(t, svc.Redeem(ctx, token, "brand-new-pass"))
		require.ErrorIs(t, svc.Redeem(ctx, token, "another-pass"), ErrResetUsed)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		st := newTestStore(t)
		seedCoach(t, st, "coach@example.com")
		mailer := &captureMailer{}
		svc := newResetService(st, mailer)
		svc.TTL = -time.Minute

		require.NoError(t, svc.Request(ctx, "coach@example.com"))
		token := tokenFromResetMail(t, mailer.sent[0].Body)

		require.ErrorIs(t, svc.Redeem(ctx, token, "brand-new-pass"), ErrResetExpired)
	})

	t.Run("short password rejected before lookup", func(t *testing.T) {
		svc, token := newIssued(t)

		require.ErrorIs(t, svc.Redeem(ctx, token, "12345"), ErrPasswordTooShort)
		// Token still live.
		require.NoError(t, svc.Redeem(ctx, token, "123456"))
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		svc, _ := newIssued(t)

		require.ErrorIs(t, svc.Redeem(ctx, "bogus", "brand-new-pass"), ErrResetInvalid)
		require.ErrorIs(t, svc.Redeem(ctx, "", "brand-new-pass"), ErrResetInvalid)
	})
}
