package service

import (
	"context"
	"errors"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/idx"
)

var (
	ErrActionNotFound    = errors.New("action not found")
	ErrGoalLocked        = errors.New("goal is reformulated, its actions are read-only")
	ErrInvalidActionKind = errors.New("unknown action kind")
	ErrEmptyActionText   = errors.New("action description must not be empty")
)

// ActionService manages the enabler/blocker lists attached to goals. All
// mutations re-check the goal's status inside the same transaction as the
// write, so a concurrent reformulation cannot slip a mutation through.
type ActionService struct {
	Store store.Store
}

// Create appends an action to a goal.
func (s *ActionService) Create(
	ctx context.Context,
	ownerID, goalID, kind, description string,
) (domain.Action, error) {
	if !domain.ValidActionKind(kind) {
		return domain.Action{}, ErrInvalidActionKind
	}
	if description == "" {
		return domain.Action{}, ErrEmptyActionText
	}

	a := domain.Action{
		ID:          idx.New().String(),
		GoalID:      goalID,
		Kind:        kind,
		Description: description,
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.requireMutableGoal(ctx, tx, ownerID, goalID); err != nil {
			return err
		}
		return tx.Actions().CreateAction(ctx, a)
	})
	if err != nil {
		return domain.Action{}, err
	}
	return a, nil
}

// List returns a goal's actions. Reads are allowed regardless of status.
func (s *ActionService) List(ctx context.Context, ownerID, goalID string) ([]domain.Action, error) {
	g, err := s.Store.Goals().GetGoalByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if g.OwnerID != ownerID {
		return nil, ErrGoalNotFound
	}
	return s.Store.Actions().ListActionsForGoal(ctx, goalID)
}

// Update rewrites an action's description and done flag.
func (s *ActionService) Update(
	ctx context.Context,
	ownerID, actionID, description string,
	done bool,
) (domain.Action, error) {
	if description == "" {
		return domain.Action{}, ErrEmptyActionText
	}

	var a domain.Action
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if a, err = s.getOwnedAction(ctx, tx, ownerID, actionID); err != nil {
			return err
		}
		if err := s.requireMutableGoal(ctx, tx, ownerID, a.GoalID); err != nil {
			return err
		}
		if err := tx.Actions().UpdateAction(ctx, actionID, description, done); err != nil {
			return err
		}
		a, err = tx.Actions().GetActionByID(ctx, actionID)
		return err
	})
	if err != nil {
		return domain.Action{}, err
	}
	return a, nil
}

// Delete removes an action from its goal.
func (s *ActionService) Delete(ctx context.Context, ownerID, actionID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := s.getOwnedAction(ctx, tx, ownerID, actionID)
		if err != nil {
			return err
		}
		if err := s.requireMutableGoal(ctx, tx, ownerID, a.GoalID); err != nil {
			return err
		}
		return tx.Actions().DeleteAction(ctx, actionID)
	})
}

// requireMutableGoal checks ownership and that the goal is not reformulated.
// Runs inside the caller's transaction.
func (s *ActionService) requireMutableGoal(ctx context.Context, tx store.Tx, ownerID, goalID string) error {
	g, err := tx.Goals().GetGoalByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	if g.OwnerID != ownerID {
		return ErrGoalNotFound
	}
	if g.ActionsLocked() {
		return ErrGoalLocked
	}
	return nil
}

func (s *ActionService) getOwnedAction(ctx context.Context, tx store.Tx, ownerID, actionID string) (domain.Action, error) {
	a, err := tx.Actions().GetActionByID(ctx, actionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Action{}, ErrActionNotFound
		}
		return domain.Action{}, err
	}
	g, err := tx.Goals().GetGoalByID(ctx, a.GoalID)
	if err != nil {
		return domain.Action{}, err
	}
	if g.OwnerID != ownerID {
		return domain.Action{}, ErrActionNotFound
	}
	return a, nil
}
