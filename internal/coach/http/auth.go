package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/pkg/coachapi"
	"github.com/quierolab/quiero/pkg/httpx"
	"github.com/quierolab/quiero/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Password Login
//	@Description	Authenticate with email and password. Returns a Bearer access token, an opaque refresh token and the landing destination to redirect to.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.LoginRequest	true	"Credentials"
//	@Success		200		{object}	coachapi.TokenResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		401		{object}	coachapi.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "email and password are required")
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, coachapi.ErrCodeInvalidCredentials, "Invalid email or password")
		case errors.Is(err, service.ErrUnresolved):
			writeError(w, http.StatusConflict, coachapi.ErrCodeUnresolved, "Account has no usable destination; contact support")
		default:
			log.Error("login failed", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Login failed")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Session
//	@Description	Exchange a refresh token for a new token pair. The presented refresh token is revoked (rotation).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	coachapi.TokenResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		401		{object}	coachapi.ErrorResponse
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "refresh_token is required")
		return
	}

	pair, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			writeError(w, http.StatusUnauthorized, coachapi.ErrCodeInvalidToken, "Refresh token is invalid, expired or revoked")
		default:
			log.Error("refresh failed", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Refresh failed")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(pair))
}

type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revoke a refresh token. Idempotent: revoking an unknown token still succeeds.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	coachapi.StatusResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Logout failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "ok"})
}

func tokenResponse(pair service.TokenPair) coachapi.TokenResponse {
	return coachapi.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		Landing:      string(pair.Landing),
	}
}

func writeError(w http.ResponseWriter, code int, errCode, desc string) {
	httpx.WriteJSON(w, code, coachapi.ErrorResponse{
		Error:            errCode,
		ErrorDescription: desc,
	})
}
