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

type PasswordResetRequestHandler struct {
	PasswordResetService *service.PasswordResetService
}

// ServeHTTP godoc
//
//	@Summary		Request Password Reset
//	@Description	Request a reset link for an email address. The response is identical whether or not the address has an account.
//	@Tags			PasswordResets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.PasswordResetRequest	true	"Account email"
//	@Success		202		{object}	coachapi.StatusResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Router			/v1/password-resets [post].
func (h *PasswordResetRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "email is required")
		return
	}

	if err := h.PasswordResetService.Request(ctx, req.Email); err != nil {
		log.Error("failed to process reset request", "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to process request")
		return
	}

	// Accepted, not OK: the mail may or may not have been sent and the
	// caller is not told which.
	httpx.WriteJSON(w, http.StatusAccepted, coachapi.StatusResponse{Status: "accepted"})
}

type PasswordResetRedeemHandler struct {
	PasswordResetService *service.PasswordResetService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Password Reset
//	@Description	Consume a reset token: the password is replaced and every outstanding refresh token for the account is revoked.
//	@Tags			PasswordResets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.RedeemPasswordResetRequest	true	"Token and new password"
//	@Success		200		{object}	coachapi.StatusResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		410		{object}	coachapi.ErrorResponse
//	@Router			/v1/password-resets/redeem [post].
func (h *PasswordResetRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.RedeemPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := h.PasswordResetService.Redeem(ctx, req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodePasswordTooShort, "Password must be at least 6 characters")
		case errors.Is(err, service.ErrResetInvalid):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidToken, "Reset token is invalid")
		case errors.Is(err, service.ErrResetUsed):
			writeError(w, http.StatusGone, coachapi.ErrCodeTokenUsed, "Reset link has already been used")
		case errors.Is(err, service.ErrResetExpired):
			writeError(w, http.StatusGone, coachapi.ErrCodeTokenExpired, "Reset link has expired; request a new one")
		default:
			log.Error("failed to redeem reset", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to redeem reset")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "ok"})
}
