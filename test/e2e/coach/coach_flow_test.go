package coach_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/pkg/coachapi"
)

// TestInvitationOnboardingFlow walks the whole happy path: a coach registers
// a coachee, sends the invitation, the coachee redeems the emailed token,
// logs in and lands on the coachee page.
func TestInvitationOnboardingFlow(t *testing.T) {
	ctx := t.Context()
	env := setupServer(t)
	env.seedCoach(t, "coach@example.com", "coach-password")

	client := coachapi.NewClient(env.Server.URL)

	coachSession, err := client.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)
	require.Equal(t, "coach", coachSession.Landing)

	coachee, err := coachSession.CreateCoachee(ctx, "nina@example.com", "Nina P")
	require.NoError(t, err)
	require.Equal(t, "invited", coachee.Status)

	inv, err := coachSession.SendInvitation(ctx, coachee.ID, "")
	require.NoError(t, err)
	require.Equal(t, "sent", inv.Status)
	require.Equal(t, "nina@example.com", inv.Email)

	token := tokenFromMail(t, env.Mailbox.latestTo(t, "nina@example.com"))

	redeemed, err := client.RedeemInvitation(ctx, token, "nina-secret")
	require.NoError(t, err)
	require.Equal(t, "nina@example.com", redeemed.Email)

	// The coachee can now log in; routing sends them to the coachee page.
	coacheeSession, err := client.Login(ctx, "nina@example.com", "nina-secret")
	require.NoError(t, err)
	require.Equal(t, "coachee", coacheeSession.Landing)

	// The relationship flipped to active.
	list, err := coachSession.ListCoachees(ctx)
	require.NoError(t, err)
	require.Len(t, list.Coachees, 1)
	require.Equal(t, "active", list.Coachees[0].Status)

	// The token is burnt.
	_, err = client.RedeemInvitation(ctx, token, "other-secret")
	var apiErr *coachapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusGone, apiErr.StatusCode)
	require.Equal(t, coachapi.ErrCodeTokenUsed, apiErr.Code)
}

func TestResendInvalidatesOldLink(t *testing.T) {
	ctx := t.Context()
	env := setupServer(t)
	env.seedCoach(t, "coach@example.com", "coach-password")
	client := coachapi.NewClient(env.Server.URL)

	session, err := client.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)

	coachee, err := session.CreateCoachee(ctx, "nina@example.com", "Nina P")
	require.NoError(t, err)

	_, err = session.SendInvitation(ctx, coachee.ID, "")
	require.NoError(t, err)
	oldToken := tokenFromMail(t, env.Mailbox.latestTo(t, "nina@example.com"))

	_, err = session.SendInvitation(ctx, coachee.ID, "")
	require.NoError(t, err)
	newToken := tokenFromMail(t, env.Mailbox.latestTo(t, "nina@example.com"))
	require.NotEqual(t, oldToken, newToken)

	// Old link: invalid, not "used".
	_, err = client.RedeemInvitation(ctx, oldToken, "nina-secret")
	var apiErr *coachapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, coachapi.ErrCodeInvalidToken, apiErr.Code)

	_, err = client.RedeemInvitation(ctx, newToken, "nina-secret")
	require.NoError(t, err)
}

func TestLegacyLoginRedirect(t *testing.T) {
	env := setupServer(t)

	noRedirect := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := noRedirect.Get(env.Server.URL + "/login?token=abc123&email=nina%40example.com")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.Contains(t, loc, "https://front.test/acceso/coachee?")
	require.Contains(t, loc, "token=abc123")
	require.Contains(t, loc, "email=nina%40example.com")

	// Sub-paths under /login carry the same rule.
	resp2, err := noRedirect.Get(env.Server.URL + "/login/callback?token=abc123&email=nina%40example.com")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusFound, resp2.StatusCode)
	loc2 := resp2.Header.Get("Location")
	require.Contains(t, loc2, "https://front.test/acceso/coachee?")
	require.Contains(t, loc2, "token=abc123")

	// A tokenless visit goes to the plain login page.
	resp3, err := noRedirect.Get(env.Server.URL + "/login")
	require.NoError(t, err)
	defer resp3.Body.Close()
	require.Equal(t, http.StatusFound, resp3.StatusCode)
	require.Equal(t, "https://front.test/login", resp3.Header.Get("Location"))
}

func TestPasswordResetIsNeutral(t *testing.T) {
	ctx := t.Context()
	env := setupServer(t)
	env.seedCoach(t, "coach@example.com", "coach-password")
	client := coachapi.NewClient(env.Server.URL)

	// Unknown address gets the same 202 as a known one.
	require.NoError(t, client.RequestPasswordReset(ctx, "nobody@example.com"))
	require.NoError(t, client.RequestPasswordReset(ctx, "coach@example.com"))

	token := tokenFromMail(t, env.Mailbox.latestTo(t, "coach@example.com"))
	require.NoError(t, client.RedeemPasswordReset(ctx, token, "fresh-password"))

	_, err := client.Login(ctx, "coach@example.com", "coach-password")
	var apiErr *coachapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = client.Login(ctx, "coach@example.com", "fresh-password")
	require.NoError(t, err)
}

func TestGoalAndActionFlow(t *testing.T) {
	ctx := t.Context()
	env := setupServer(t)
	env.seedCoach(t, "coach@example.com", "coach-password")
	client := coachapi.NewClient(env.Server.URL)

	session, err := client.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)

	goal, err := session.CreateGoal(ctx, "Delegar más", "Dejar de microgestionar")
	require.NoError(t, err)
	require.Equal(t, "activo", goal.Status)

	action, err := session.CreateAction(ctx, goal.ID, "habilitante", "Agendar 1:1 semanales")
	require.NoError(t, err)
	require.Equal(t, goal.ID, action.GoalID)

	// Reformulation locks the action list over HTTP too.
	_, err = session.SetGoalStatus(ctx, goal.ID, "reformulado")
	require.NoError(t, err)

	_, err = session.CreateAction(ctx, goal.ID, "inhabilitante", "Responder todo al instante")
	var apiErr *coachapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusLocked, apiErr.StatusCode)
	require.Equal(t, coachapi.ErrCodeGoalLocked, apiErr.Code)
}

func TestRefreshAndLogoutOverHTTP(t *testing.T) {
	ctx := t.Context()
	env := setupServer(t)
	env.seedCoach(t, "coach@example.com", "coach-password")
	client := coachapi.NewClient(env.Server.URL)

	session, err := client.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)

	oldRefresh := session.RefreshToken
	require.NoError(t, session.Refresh(ctx))
	require.NotEqual(t, oldRefresh, session.RefreshToken)

	require.NoError(t, session.Logout(ctx))

	err = session.Refresh(ctx)
	var apiErr *coachapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
