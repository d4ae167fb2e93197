package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/slogx"
)

// DefaultHousekeepingInterval is how often expired tokens are swept.
const DefaultHousekeepingInterval = 15 * time.Minute

// HousekeepingService periodically rolls overdue invitations to "expired"
// and deletes dead password resets and refresh tokens.
type HousekeepingService struct {
	Store    store.Store
	Interval time.Duration // zero means DefaultHousekeepingInterval

	stop chan struct{}
	done chan struct{}
}

func (s *HousekeepingService) interval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return DefaultHousekeepingInterval
}

// Start launches the background sweeper. One sweep runs immediately so a
// restart does not leave stale rows until the first tick.
func (s *HousekeepingService) Start(ctx context.Context) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.Sweep(ctx)

		ticker := time.NewTicker(s.interval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
}

// Sweep runs one pass. Each step logs and continues on failure so one broken
// table does not starve the others.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if err := s.Store.Invitations().ExpireOverdueInvitations(ctx, now); err != nil {
		log.Error("failed to expire overdue invitations", slog.Any("error", err))
	}
	if err := s.Store.PasswordResets().DeleteExpiredPasswordResets(ctx, now); err != nil {
		log.Error("failed to delete expired password resets", slog.Any("error", err))
	}
	if err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now); err != nil {
		log.Error("failed to delete expired refresh tokens", slog.Any("error", err))
	}

	log.Debug("housekeeping sweep complete")
}
