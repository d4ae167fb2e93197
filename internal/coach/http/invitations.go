package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/pkg/coachapi"
	"github.com/quierolab/quiero/pkg/httpx"
	"github.com/quierolab/quiero/pkg/slogx"
)

type InvitationSendHandler struct {
	InvitationService *service.InvitationService
	CoacheeService    *service.CoacheeService
}

// ServeHTTP godoc
//
//	@Summary		Send Invitation
//	@Description	Issue an activation token for a coachee and email the link. Re-sending replaces the previous token: the old link stops working, the expiry window restarts. If the mail cannot be delivered the token is revoked and an error is returned.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.SendInvitationRequest	true	"Target coachee"
//	@Success		200		{object}	coachapi.InvitationResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		404		{object}	coachapi.ErrorResponse
//	@Failure		502		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invitations/send [post].
func (h *InvitationSendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	coachID := httpx.UserIDFromCtx(ctx)

	var req coachapi.SendInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.CoacheeID == "" {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "coachee_id is required")
		return
	}

	email := req.Email
	if email == "" {
		coachee, err := h.CoacheeService.Get(ctx, coachID, req.CoacheeID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrCoacheeNotFound), errors.Is(err, service.ErrNotYourCoachee):
				writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Coachee not found")
			default:
				log.Error("failed to resolve coachee email", "err", err)
				writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to send invitation")
			}
			return
		}
		email = coachee.Email
	}

	inv, err := h.InvitationService.Send(ctx, coachID, req.CoacheeID, email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCoacheeNotFound), errors.Is(err, service.ErrNotYourCoachee):
			writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Coachee not found")
		case errors.Is(err, service.ErrDeliveryFailed):
			writeError(w, http.StatusBadGateway, coachapi.ErrCodeDeliveryFailed, "Invitation email could not be delivered; the token was revoked")
		default:
			log.Error("failed to send invitation", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to send invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAPIInvitation(inv))
}

type InvitationRedeemHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Invitation
//	@Description	Consume an invitation token by setting the account's initial password. The token is single use; used, expired, revoked and superseded tokens are rejected with distinct error codes.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.RedeemInvitationRequest	true	"Token and new password"
//	@Success		200		{object}	coachapi.RedeemInvitationResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		410		{object}	coachapi.ErrorResponse
//	@Router			/v1/invitations/redeem [post].
func (h *InvitationRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.RedeemInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	user, err := h.InvitationService.SetPasswordByToken(ctx, req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodePasswordTooShort, "Password must be at least 6 characters")
		case errors.Is(err, service.ErrInvitationInvalid):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidToken, "Invitation token is invalid")
		case errors.Is(err, service.ErrInvitationUsed):
			writeError(w, http.StatusGone, coachapi.ErrCodeTokenUsed, "Invitation has already been used")
		case errors.Is(err, service.ErrInvitationExpired):
			writeError(w, http.StatusGone, coachapi.ErrCodeTokenExpired, "Invitation has expired; ask your coach to send a new one")
		default:
			log.Error("failed to redeem invitation", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to redeem invitation")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.RedeemInvitationResponse{
		UserID: user.ID,
		Email:  user.Email,
	})
}

func toAPIInvitation(inv domain.Invitation) coachapi.InvitationResponse {
	return coachapi.InvitationResponse{
		ID:        inv.ID,
		CoacheeID: inv.CoacheeID,
		Email:     inv.Email,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
	}
}
