package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/slogx"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUnknownRole  = errors.New("unknown role")
)

// UserService covers the admin-facing account operations: profile lookup and
// role grants/revocations.
type UserService struct {
	Store store.Store
}

// Profile is a user together with their assigned roles.
type Profile struct {
	User  domain.User
	Roles []string
}

// Get returns a user's profile with roles.
func (s *UserService) Get(ctx context.Context, userID string) (Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}
	roles, err := s.Store.Roles().ListRolesForUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{User: user, Roles: roles}, nil
}

// GrantRole assigns a role to a user. Granting twice is a no-op.
func (s *UserService) GrantRole(ctx context.Context, userID, role string) error {
	if !domain.KnownRole(role) {
		return ErrUnknownRole
	}
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.Store.Roles().GrantRole(ctx, userID, role); err != nil {
		slogx.FromContext(ctx).Error("failed to grant role",
			slog.String("user_id", userID),
			slog.String("role", role),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// RevokeRole removes a role from a user.
func (s *UserService) RevokeRole(ctx context.Context, userID, role string) error {
	if !domain.KnownRole(role) {
		return ErrUnknownRole
	}
	return s.Store.Roles().RevokeRole(ctx, userID, role)
}
