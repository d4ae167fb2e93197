package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/internal/coach/domain"
)

func TestCreateCoachee(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions an inactive account with coachee role", func(t *testing.T) {
		st := newTestStore(t)
		coachID := seedCoach(t, st, "coach@example.com")
		svc := &CoacheeService{Store: st}

		coachee, err := svc.Create(ctx, coachID, "nina@example.com", "Nina P")
		require.NoError(t, err)
		require.Equal(t, domain.CoacheeStatusInvited, coachee.Status)
		require.NotEmpty(t, coachee.UserID)

		user, err := st.Users().GetUserByID(ctx, coachee.UserID)
		require.NoError(t, err)
		require.False(t, user.Active)
		require.Empty(t, user.PasswordHash)

		roles, err := st.Roles().ListRolesForUser(ctx, coachee.UserID)
		require.NoError(t, err)
		require.Contains(t, roles, domain.RoleCoachee)
	})

	t.Run("duplicate pair rejected", func(t *testing.T) {
		st := newTestStore(t)
		coachID := seedCoach(t, st, "coach@example.com")
		svc := &CoacheeService{Store: st}

		_, err := svc.Create(ctx, coachID, "nina@example.com", "Nina P")
		require.NoError(t, err)

		_, err = svc.Create(ctx, coachID, "nina@example.com", "Nina P")
		require.ErrorIs(t, err, ErrCoacheeExists)
	})

	t.Run("same person can be another coach's coachee", func(t *testing.T) {
		st := newTestStore(t)
		coachA := seedCoach(t, st, "a@example.com")
		coachB := seedCoach(t, st, "b@example.com")
		svc := &CoacheeService{Store: st}

		first, err := svc.Create(ctx, coachA, "nina@example.com", "Nina P")
		require.NoError(t, err)

		second, err := svc.Create(ctx, coachB, "nina@example.com", "Nina P")
		require.NoError(t, err)

		// One account, two relationships.
		require.Equal(t, first.UserID, second.UserID)
		require.NotEqual(t, first.ID, second.ID)
	})
}

func TestListAndGetCoachees(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	coachA := seedCoach(t, st, "a@example.com")
	coachB := seedCoach(t, st, "b@example.com")
	svc := &CoacheeService{Store: st}

	mine, err := svc.Create(ctx, coachA, "nina@example.com", "Nina P")
	require.NoError(t, err)
	_, err = svc.Create(ctx, coachB, "omar@example.com", "Omar Q")
	require.NoError(t, err)

	list, err := svc.List(ctx, coachA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	// Scoped get hides other coaches' rows.
	_, err = svc.Get(ctx, coachB, mine.ID)
	require.ErrorIs(t, err, ErrNotYourCoachee)

	got, err := svc.Get(ctx, coachA, mine.ID)
	require.NoError(t, err)
	require.Equal(t, "nina@example.com", got.Email)
}
