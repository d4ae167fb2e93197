package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/jwtx"
)

func newAuthService(t *testing.T, st store.Store) *AuthService {
	t.Helper()

	km, err := jwtx.NewKeyManager("test-issuer")
	require.NoError(t, err)

	return &AuthService{
		Store:      st,
		Signer:     km.Signer,
		Routing:    &RoutingService{Store: st, Delay: time.Millisecond},
		Issuer:     "test-issuer",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a pair with landing", func(t *testing.T) {
		st := newTestStore(t)
		seedCoach(t, st, "coach@example.com")
		svc := newAuthService(t, st)

		pair, err := svc.Login(ctx, "coach@example.com", "coach-password")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, int64(60), pair.ExpiresIn)
		require.Equal(t, domain.LandingCoach, pair.Landing)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		st := newTestStore(t)
		seedCoach(t, st, "coach@example.com")
		svc := newAuthService(t, st)

		_, err := svc.Login(ctx, "coach@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email rejected with the same error", func(t *testing.T) {
		st := newTestStore(t)
		svc := newAuthService(t, st)

		_, err := svc.Login(ctx, "who@example.com", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account cannot log in", func(t *testing.T) {
		st := newTestStore(t)
		coachID := seedCoach(t, st, "coach@example.com")
		seedCoachee(t, st, coachID, "nina@example.com")
		svc := newAuthService(t, st)

		// The coachee exists but never consumed an invitation.
		_, err := svc.Login(ctx, "nina@example.com", "anything")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedCoach(t, st, "coach@example.com")
	svc := newAuthService(t, st)

	pair, err := svc.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The old refresh token is dead after rotation.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// The new one still works.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedCoach(t, st, "coach@example.com")
	svc := newAuthService(t, st)

	pair, err := svc.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// Revoking again is a no-op, not an error.
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestLoginFetchesRolesOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedCoach(t, st, "coach@example.com")

	flaky := &flakyStore{Store: st}
	svc := newAuthService(t, flaky)

	pair, err := svc.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)
	require.Equal(t, domain.LandingCoach, pair.Landing)
	require.Equal(t, 1, flaky.roleCalls)

	// Rotation mints a fresh pair from the same single fetch.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, 2, flaky.roleCalls)
}

func TestAccessTokenCarriesRoles(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachID := seedCoach(t, st, "coach@example.com")
	require.NoError(t, st.Roles().GrantRole(ctx, coachID, domain.RoleAdmin))

	km, err := jwtx.NewKeyManager("test-issuer")
	require.NoError(t, err)

	svc := &AuthService{
		Store:   st,
		Signer:  km.Signer,
		Routing: &RoutingService{Store: st, Delay: time.Millisecond},
		Issuer:  "test-issuer",
	}

	pair, err := svc.Login(ctx, "coach@example.com", "coach-password")
	require.NoError(t, err)
	require.Equal(t, domain.LandingSelector, pair.Landing)

	claims, err := km.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, coachID, claims.Subject)
	require.ElementsMatch(t, []string{domain.RoleAdmin, domain.RoleCoach}, claims.Roles)
	require.Equal(t, "coach@example.com", claims.Email)
}
