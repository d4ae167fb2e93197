package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/pkg/coachapi"
	"github.com/quierolab/quiero/pkg/httpx"
	"github.com/quierolab/quiero/pkg/slogx"
)

type GoalsHandler struct {
	GoalService *service.GoalService
}

// HandleCreate godoc
//
//	@Summary		Create Quiero
//	@Description	Record a new personal goal ("quiero") for the caller, starting in status "activo".
//	@Tags			Quieros
//	@Accept			json
//	@Produce		json
//	@Param			body	body		coachapi.CreateGoalRequest	true	"Goal content"
//	@Success		201		{object}	coachapi.Goal
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros [post].
func (h *GoalsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req coachapi.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	g, err := h.GoalService.Create(ctx, httpx.UserIDFromCtx(ctx), req.Title, req.Detail)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyGoalTitle):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "title is required")
		default:
			log.Error("failed to create goal", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to create goal")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAPIGoal(g))
}

// HandleList godoc
//
//	@Summary		List Quieros
//	@Description	Return the caller's goals, newest first.
//	@Tags			Quieros
//	@Produce		json
//	@Success		200	{object}	coachapi.GoalListResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros [get].
func (h *GoalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	goals, err := h.GoalService.List(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		log.Error("failed to list goals", "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to list goals")
		return
	}

	out := coachapi.GoalListResponse{Goals: make([]coachapi.Goal, 0, len(goals))}
	for _, g := range goals {
		out.Goals = append(out.Goals, toAPIGoal(g))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get Quiero
//	@Description	Return one of the caller's goals.
//	@Tags			Quieros
//	@Produce		json
//	@Param			id	path		string	true	"Goal id"
//	@Success		200	{object}	coachapi.Goal
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros/{id} [get].
func (h *GoalsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	g, err := h.GoalService.Get(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		h.writeGoalError(w, ctx, err, "Failed to get goal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIGoal(g))
}

// HandleUpdate godoc
//
//	@Summary		Update Quiero
//	@Description	Rewrite a goal's title and detail.
//	@Tags			Quieros
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Goal id"
//	@Param			body	body		coachapi.UpdateGoalRequest	true	"New content"
//	@Success		200		{object}	coachapi.Goal
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		404		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros/{id} [put].
func (h *GoalsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	g, err := h.GoalService.Update(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"), req.Title, req.Detail)
	if err != nil {
		h.writeGoalError(w, ctx, err, "Failed to update goal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIGoal(g))
}

// HandleSetStatus godoc
//
//	@Summary		Transition Quiero Status
//	@Description	Move a goal between "activo", "reformulado" and "cerrado". While a goal is "reformulado" its action list is read-only.
//	@Tags			Quieros
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Goal id"
//	@Param			body	body		coachapi.GoalStatusRequest	true	"Target status"
//	@Success		200		{object}	coachapi.Goal
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		404		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros/{id}/status [put].
func (h *GoalsHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.GoalStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	g, err := h.GoalService.SetStatus(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"), req.Status)
	if err != nil {
		h.writeGoalError(w, ctx, err, "Failed to transition goal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIGoal(g))
}

// HandleDelete godoc
//
//	@Summary		Delete Quiero
//	@Description	Remove a goal and its actions.
//	@Tags			Quieros
//	@Produce		json
//	@Param			id	path		string	true	"Goal id"
//	@Success		200	{object}	coachapi.StatusResponse
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros/{id} [delete].
func (h *GoalsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.GoalService.Delete(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id")); err != nil {
		h.writeGoalError(w, ctx, err, "Failed to delete goal")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "deleted"})
}

func (h *GoalsHandler) writeGoalError(w http.ResponseWriter, ctx context.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Goal not found")
	case errors.Is(err, service.ErrEmptyGoalTitle):
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "title is required")
	case errors.Is(err, service.ErrInvalidGoalStatus):
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Unknown goal status")
	default:
		slogx.FromContext(ctx).Error(fallback, "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, fallback)
	}
}

func toAPIGoal(g domain.Goal) coachapi.Goal {
	return coachapi.Goal{
		ID:        g.ID,
		Title:     g.Title,
		Detail:    g.Detail,
		Status:    g.Status,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
