package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/slogx"
)

// ErrUnresolved means no landing destination could be determined for the
// user. Callers should treat it as "sign out and start over".
var ErrUnresolved = errors.New("landing destination could not be resolved")

const (
	defaultRoutingRetries = 2
	defaultRoutingDelay   = 350 * time.Millisecond
)

// RoutingService is the single authority for post-login destination
// resolution. Every caller (login handler, landing endpoint, redirect
// shims) goes through Resolve so the decision table lives in one place.
type RoutingService struct {
	Store store.Store

	// Retries is how many extra attempts a transient role-fetch failure
	// gets before giving up. Zero value means defaultRoutingRetries.
	Retries int
	// Delay between attempts. Zero value means defaultRoutingDelay.
	Delay time.Duration
}

func (s *RoutingService) retries() int {
	if s.Retries > 0 {
		return s.Retries
	}
	return defaultRoutingRetries
}

func (s *RoutingService) delay() time.Duration {
	if s.Delay > 0 {
		return s.Delay
	}
	return defaultRoutingDelay
}

// Resolve maps a user to a landing destination:
//
//	admin + coach  -> selector
//	admin          -> admin
//	coach          -> coach
//	anything else  -> coachee (including an empty role list)
//
// A missing user row is ErrUnresolved immediately; retries only cover
// transient fetch failures, not a definitive "no such user".
func (s *RoutingService) Resolve(ctx context.Context, userID string) (domain.Landing, error) {
	_, landing, err := s.ResolveRoles(ctx, userID)
	return landing, err
}

// ResolveRoles is Resolve for callers that also need the role list (token
// minting stamps it into the access claims). The roles are fetched once per
// attempt and feed both the returned list and the landing decision.
func (s *RoutingService) ResolveRoles(ctx context.Context, userID string) ([]string, domain.Landing, error) {
	log := slogx.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= s.retries(); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(s.delay()):
			}
			log.Debug("retrying landing resolution",
				slog.String("user_id", userID),
				slog.Int("attempt", attempt),
			)
		}

		roles, landing, err := s.resolveOnce(ctx, userID)
		if err == nil {
			return roles, landing, nil
		}
		if errors.Is(err, ErrUnresolved) {
			return nil, "", ErrUnresolved
		}
		lastErr = err
	}

	log.Error("landing resolution exhausted retries",
		slog.String("user_id", userID),
		slog.Any("error", lastErr),
	)
	return nil, "", ErrUnresolved
}

func (s *RoutingService) resolveOnce(ctx context.Context, userID string) ([]string, domain.Landing, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrUnresolved
		}
		return nil, "", err
	}

	roles, err := s.Store.Roles().ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	return roles, LandingForRoles(roles), nil
}

// LandingForRoles applies the decision table to a raw role list. Unknown
// role strings are ignored.
func LandingForRoles(roles []string) domain.Landing {
	isAdmin := slices.Contains(roles, domain.RoleAdmin)
	isCoach := slices.Contains(roles, domain.RoleCoach)

	switch {
	case isAdmin && isCoach:
		return domain.LandingSelector
	case isAdmin:
		return domain.LandingAdmin
	case isCoach:
		return domain.LandingCoach
	default:
		return domain.LandingCoachee
	}
}
