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

var ErrCoacheeExists = errors.New("coachee already registered for this coach")

// CoacheeService provisions and lists coaching relationships.
type CoacheeService struct {
	Store store.Store
}

// Create provisions a coachee for a coach: an inactive user account (unless
// one already exists for the email), the coachee role grant and the
// relationship row, all in one transaction. The account stays inactive until
// an invitation token is consumed.
func (s *CoacheeService) Create(
	ctx context.Context,
	coachID, email, fullName string,
) (domain.Coachee, error) {
	log := slogx.FromContext(ctx)

	coachee := domain.Coachee{
		ID:       idx.New().String(),
		CoachID:  coachID,
		Email:    email,
		FullName: fullName,
		Status:   domain.CoacheeStatusInvited,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// Existing account, possibly another coach's coachee.
		case errors.Is(err, store.ErrNotFound):
			user = domain.User{
				ID:       idx.New().String(),
				Email:    email,
				FullName: fullName,
				Active:   false,
			}
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				return err
			}
		default:
			return err
		}

		if err := tx.Roles().GrantRole(ctx, user.ID, domain.RoleCoachee); err != nil {
			return err
		}

		coachee.UserID = user.ID
		return tx.Coachees().CreateCoachee(ctx, coachee)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Coachee{}, ErrCoacheeExists
		}
		log.Error("failed to provision coachee",
			slog.String("coach_id", coachID),
			slog.Any("error", err),
		)
		return domain.Coachee{}, err
	}

	log.Info("coachee provisioned",
		slog.String("coachee_id", coachee.ID),
		slog.String("coach_id", coachID),
	)
	return coachee, nil
}

// List returns a coach's coachees, newest first.
func (s *CoacheeService) List(ctx context.Context, coachID string) ([]domain.Coachee, error) {
	return s.Store.Coachees().ListCoacheesForCoach(ctx, coachID)
}

// Get fetches one coachee, scoped to the requesting coach.
func (s *CoacheeService) Get(ctx context.Context, coachID, coacheeID string) (domain.Coachee, error) {
	c, err := s.Store.Coachees().GetCoacheeByID(ctx, coacheeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Coachee{}, ErrCoacheeNotFound
		}
		return domain.Coachee{}, err
	}
	if c.CoachID != coachID {
		return domain.Coachee{}, ErrNotYourCoachee
	}
	return c, nil
}
