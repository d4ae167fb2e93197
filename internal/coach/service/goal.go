package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/idx"
	"github.com/quierolab/quiero/pkg/slogx"
)

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrNotYourGoal       = errors.New("goal belongs to a different user")
	ErrInvalidGoalStatus = errors.New("unknown goal status")
	ErrEmptyGoalTitle    = errors.New("goal title must not be empty")
)

// GoalService owns "quiero" CRUD and status transitions. Every operation is
// scoped to the owning user; there is no cross-user goal access.
type GoalService struct {
	Store store.Store
}

// Create records a new goal for ownerID in status "activo".
func (s *GoalService) Create(ctx context.Context, ownerID, title, detail string) (domain.Goal, error) {
	if title == "" {
		return domain.Goal{}, ErrEmptyGoalTitle
	}

	g := domain.Goal{
		ID:      idx.New().String(),
		OwnerID: ownerID,
		Title:   title,
		Detail:  detail,
		Status:  domain.GoalStatusActivo,
	}
	if err := s.Store.Goals().CreateGoal(ctx, g); err != nil {
		slogx.FromContext(ctx).Error("failed to create goal", slog.Any("error", err))
		return domain.Goal{}, err
	}
	return g, nil
}

// List returns all of ownerID's goals, newest first.
func (s *GoalService) List(ctx context.Context, ownerID string) ([]domain.Goal, error) {
	return s.Store.Goals().ListGoalsForOwner(ctx, ownerID)
}

// Get fetches one goal, scoped to its owner.
func (s *GoalService) Get(ctx context.Context, ownerID, goalID string) (domain.Goal, error) {
	return s.getOwned(ctx, s.Store, ownerID, goalID)
}

// Update rewrites a goal's title and detail.
func (s *GoalService) Update(ctx context.Context, ownerID, goalID, title, detail string) (domain.Goal, error) {
	if title == "" {
		return domain.Goal{}, ErrEmptyGoalTitle
	}

	var g domain.Goal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if g, err = s.getOwned(ctx, tx, ownerID, goalID); err != nil {
			return err
		}
		if err := tx.Goals().UpdateGoalContent(ctx, goalID, title, detail); err != nil {
			return err
		}
		g, err = tx.Goals().GetGoalByID(ctx, goalID)
		return err
	})
	if err != nil {
		return domain.Goal{}, err
	}
	return g, nil
}

// SetStatus transitions a goal's status. Moving into "reformulado" freezes
// the goal's action list until it transitions out again.
func (s *GoalService) SetStatus(ctx context.Context, ownerID, goalID, status string) (domain.Goal, error) {
	if !domain.ValidGoalStatus(status) {
		return domain.Goal{}, ErrInvalidGoalStatus
	}

	var g domain.Goal
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if g, err = s.getOwned(ctx, tx, ownerID, goalID); err != nil {
			return err
		}
		if err := tx.Goals().UpdateGoalStatus(ctx, goalID, status); err != nil {
			return err
		}
		g, err = tx.Goals().GetGoalByID(ctx, goalID)
		return err
	})
	if err != nil {
		return domain.Goal{}, err
	}

	slogx.FromContext(ctx).Debug("goal status changed",
		slog.String("goal_id", goalID),
		slog.String("status", status),
	)
	return g, nil
}

// Delete removes a goal and, via schema cascade, its actions.
func (s *GoalService) Delete(ctx context.Context, ownerID, goalID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.getOwned(ctx, tx, ownerID, goalID); err != nil {
			return err
		}
		return tx.Goals().DeleteGoal(ctx, goalID)
	})
}

func (s *GoalService) getOwned(ctx context.Context, st store.Store, ownerID, goalID string) (domain.Goal, error) {
	g, err := st.Goals().GetGoalByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Goal{}, ErrGoalNotFound
		}
		return domain.Goal{}, err
	}
	if g.OwnerID != ownerID {
		// Hide other users' goals rather than confirming they exist.
		return domain.Goal{}, ErrGoalNotFound
	}
	return g, nil
}
