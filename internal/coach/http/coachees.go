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

type CoacheesHandler struct {
	CoacheeService *service.CoacheeService
}

// HandleCreate godoc
//
//	@Summary		Register Coachee
//	@Description	Provision a coachee for the calling coach: an inactive account plus the coaching relationship. Follow up with the invitation send endpoint to deliver the activation link.
//	@Tags			Coachees
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.CreateCoacheeRequest	true	"Coachee details"
//	@Success		201		{object}	coachapi.Coachee
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		409		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/coachees [post].
func (h *CoacheesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	coachID := httpx.UserIDFromCtx(ctx)

	var req coachapi.CreateCoacheeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "email is required")
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "full_name is required")
		return
	}

	coachee, err := h.CoacheeService.Create(ctx, coachID, req.Email, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCoacheeExists):
			writeError(w, http.StatusConflict, coachapi.ErrCodeConflict, "Coachee is already registered for this coach")
		default:
			log.Error("failed to create coachee", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to create coachee")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAPICoachee(coachee))
}

// HandleList godoc
//
//	@Summary		List Coachees
//	@Description	Return the calling coach's coachees, newest first.
//	@Tags			Coachees
//	@Produce		json
//	@Success		200	{object}	coachapi.CoacheeListResponse
//	@Security		BearerAuth
//	@Router			/v1/coachees [get].
func (h *CoacheesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	coachees, err := h.CoacheeService.List(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		log.Error("failed to list coachees", "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to list coachees")
		return
	}

	out := coachapi.CoacheeListResponse{Coachees: make([]coachapi.Coachee, 0, len(coachees))}
	for _, c := range coachees {
		out.Coachees = append(out.Coachees, toAPICoachee(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get Coachee
//	@Description	Return one of the calling coach's coachees.
//	@Tags			Coachees
//	@Produce		json
//	@Param			id	path		string	true	"Coachee id"
//	@Success		200	{object}	coachapi.Coachee
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/coachees/{id} [get].
func (h *CoacheesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	coachee, err := h.CoacheeService.Get(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCoacheeNotFound), errors.Is(err, service.ErrNotYourCoachee):
			writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Coachee not found")
		default:
			log.Error("failed to get coachee", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to get coachee")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAPICoachee(coachee))
}

func toAPICoachee(c domain.Coachee) coachapi.Coachee {
	return coachapi.Coachee{
		ID:        c.ID,
		Email:     c.Email,
		FullName:  c.FullName,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
