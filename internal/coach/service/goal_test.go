package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/idx"
)

func seedOwner(t *testing.T, st store.Store) string {
	t.Helper()

	user := domain.User{
		ID:       idx.New().String(),
		Email:    idx.New().String() + "@example.com",
		FullName: "Goal Owner",
		Active:   true,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user.ID
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID := seedOwner(t, st)
	svc := &GoalService{Store: st}

	g, err := svc.Create(ctx, ownerID, "Aprender a delegar", "Detalle inicial")
	require.NoError(t, err)
	require.Equal(t, domain.GoalStatusActivo, g.Status)

	updated, err := svc.Update(ctx, ownerID, g.ID, "Aprender a delegar mejor", "")
	require.NoError(t, err)
	require.Equal(t, "Aprender a delegar mejor", updated.Title)

	moved, err := svc.SetStatus(ctx, ownerID, g.ID, domain.GoalStatusCerrado)
	require.NoError(t, err)
	require.Equal(t, domain.GoalStatusCerrado, moved.Status)

	require.NoError(t, svc.Delete(ctx, ownerID, g.ID))
	_, err = svc.Get(ctx, ownerID, g.ID)
	require.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGoalOwnershipIsHidden(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	owner := seedOwner(t, st)
	stranger := seedOwner(t, st)
	svc := &GoalService{Store: st}

	g, err := svc.Create(ctx, owner, "Meta privada", "")
	require.NoError(t, err)

	// Another user sees not-found, not forbidden.
	_, err = svc.Get(ctx, stranger, g.ID)
	require.ErrorIs(t, err, ErrGoalNotFound)
	_, err = svc.SetStatus(ctx, stranger, g.ID, domain.GoalStatusCerrado)
	require.ErrorIs(t, err, ErrGoalNotFound)
	require.ErrorIs(t, svc.Delete(ctx, stranger, g.ID), ErrGoalNotFound)
}

func TestGoalValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID := seedOwner(t, st)
	svc := &GoalService{Store: st}

	_, err := svc.Create(ctx, ownerID, "", "detalle")
	require.ErrorIs(t, err, ErrEmptyGoalTitle)

	g, err := svc.Create(ctx, ownerID, "Meta", "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, ownerID, g.ID, "archivado")
	require.ErrorIs(t, err, ErrInvalidGoalStatus)
}

func TestReformuladoLocksActions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID := seedOwner(t, st)
	goals := &GoalService{Store: st}
	actions := &ActionService{Store: st}

	g, err := goals.Create(ctx, ownerID, "Meta con acciones", "")
	require.NoError(t, err)

	a, err := actions.Create(ctx, ownerID, g.ID, domain.ActionKindHabilitante, "Bloquear una hora diaria")
	require.NoError(t, err)

	_, err = goals.SetStatus(ctx, ownerID, g.ID, domain.GoalStatusReformulado)
	require.NoError(t, err)

	// The whole mutation surface is frozen.
	_, err = actions.Create(ctx, ownerID, g.ID, domain.ActionKindInhabilitante, "Revisar el correo sin parar")
	require.ErrorIs(t, err, ErrGoalLocked)
	_, err = actions.Update(ctx, ownerID, a.ID, "Bloquear dos horas", false)
	require.ErrorIs(t, err, ErrGoalLocked)
	require.ErrorIs(t, actions.Delete(ctx, ownerID, a.ID), ErrGoalLocked)

	// Reads still work.
	list, err := actions.List(ctx, ownerID, g.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Transitioning out unlocks mutations again.
	_, err = goals.SetStatus(ctx, ownerID, g.ID, domain.GoalStatusActivo)
	require.NoError(t, err)
	_, err = actions.Update(ctx, ownerID, a.ID, "Bloquear dos horas", true)
	require.NoError(t, err)
}

func TestActionValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID := seedOwner(t, st)
	goals := &GoalService{Store: st}
	actions := &ActionService{Store: st}

	g, err := goals.Create(ctx, ownerID, "Meta", "")
	require.NoError(t, err)

	_, err = actions.Create(ctx, ownerID, g.ID, "neutral", "texto")
	require.ErrorIs(t, err, ErrInvalidActionKind)

	_, err = actions.Create(ctx, ownerID, g.ID, domain.ActionKindHabilitante, "")
	require.ErrorIs(t, err, ErrEmptyActionText)

	_, err = actions.Create(ctx, ownerID, idx.New().String(), domain.ActionKindHabilitante, "texto")
	require.ErrorIs(t, err, ErrGoalNotFound)
}

func TestDeleteGoalCascadesActions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	ownerID := seedOwner(t, st)
	goals := &GoalService{Store: st}
	actions := &ActionService{Store: st}

	g, err := goals.Create(ctx, ownerID, "Meta", "")
	require.NoError(t, err)
	a, err := actions.Create(ctx, ownerID, g.ID, domain.ActionKindHabilitante, "algo")
	require.NoError(t, err)

	require.NoError(t, goals.Delete(ctx, ownerID, g.ID))

	_, err = st.Actions().GetActionByID(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
