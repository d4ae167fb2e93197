package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
	"github.com/quierolab/quiero/pkg/cryptox"
	"github.com/quierolab/quiero/pkg/idx"
	"github.com/quierolab/quiero/pkg/jwtx"
	"github.com/quierolab/quiero/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("refresh token is invalid or revoked")
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
	Landing      domain.Landing
}

// AuthService handles password login, refresh token rotation and logout.
type AuthService struct {
	Store   store.Store
	Signer  jwtx.Signer
	Routing *RoutingService
	Issuer  string

	AccessTTL  time.Duration // zero means jwtx.DefaultAccessTokenTTL
	RefreshTTL time.Duration // zero means jwtx.DefaultRefreshTokenTTL
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Login verifies email/password credentials and mints a token pair. The
// landing destination is resolved as part of login so the client gets its
// redirect target in the same response.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user for login", slog.Any("error", err))
		return TokenPair{}, err
	}
	if !user.Active || user.PasswordHash == "" {
		return TokenPair{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login failed, bad password", slog.String("user_id", user.ID))
			return TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.Any("error", err))
		return TokenPair{}, err
	}

	pair, err := s.mintPair(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	log.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("landing", string(pair.Landing)),
	)
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is minted. A revoked or expired token fails with ErrInvalidRefresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	hash := cryptox.FingerprintToken(refreshToken)

	stored, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefresh
		}
		log.Error("failed to fetch refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}
	if stored.Revoked || time.Now().UTC().After(stored.ExpiresAt) {
		return TokenPair{}, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, err
	}
	if !user.Active {
		return TokenPair{}, ErrInvalidRefresh
	}

	// Rotation: kill the presented token before minting its successor.
	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, hash); err != nil {
		log.Error("failed to revoke rotated refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}

	pair, err := s.mintPair(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	log.Debug("refresh token rotated", slog.String("user_id", user.ID))
	return pair, nil
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op so
// logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshToken))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to revoke refresh token on logout", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *AuthService) mintPair(ctx context.Context, user domain.User) (TokenPair, error) {
	log := slogx.FromContext(ctx)

	// One role fetch covers both the claims and the landing decision.
	roles, landing, err := s.Routing.ResolveRoles(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims(user.ID, roles, s.accessTTL(), s.Issuer, user.Email, user.FullName, now)
	access, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return TokenPair{}, err
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}
	record := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(s.refreshTTL()),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		log.Error("failed to store refresh token", slog.Any("error", err))
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL().Seconds()),
		Landing:      landing,
	}, nil
}
