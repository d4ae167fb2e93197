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

type ActionsHandler struct {
	ActionService *service.ActionService
}

// HandleCreate godoc
//
//	@Summary		Add Action
//	@Description	Append an enabling ("habilitante") or blocking ("inhabilitante") action to a goal. Rejected with 423 while the goal is "reformulado".
//	@Tags			Actions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Goal id"
//	@Param			body	body		coachapi.CreateActionRequest	true	"Action"
//	@Success		201		{object}	coachapi.Action
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		404		{object}	coachapi.ErrorResponse
//	@Failure		423		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros/{id}/actions [post].
func (h *ActionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.CreateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	a, err := h.ActionService.Create(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"), req.Kind, req.Description)
	if err != nil {
		h.writeActionError(w, ctx, err, "Failed to add action")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAPIAction(a))
}

// HandleList godoc
//
//	@Summary		List Actions
//	@Description	Return a goal's actions. Reads work regardless of the goal's status.
//	@Tags			Actions
//	@Produce		json
//	@Param			id	path		string	true	"Goal id"
//	@Success		200	{object}	coachapi.ActionListResponse
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/quieros/{id}/actions [get].
func (h *ActionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actions, err := h.ActionService.List(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		h.writeActionError(w, ctx, err, "Failed to list actions")
		return
	}

	out := coachapi.ActionListResponse{Actions: make([]coachapi.Action, 0, len(actions))}
	for _, a := range actions {
		out.Actions = append(out.Actions, toAPIAction(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate godoc
//
//	@Summary		Update Action
//	@Description	Rewrite an action's description and done flag. Rejected with 423 while the goal is "reformulado".
//	@Tags			Actions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Action id"
//	@Param			body	body		coachapi.UpdateActionRequest	true	"New content"
//	@Success		200		{object}	coachapi.Action
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		404		{object}	coachapi.ErrorResponse
//	@Failure		423		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/actions/{id} [put].
func (h *ActionsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.UpdateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	a, err := h.ActionService.Update(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"), req.Description, req.Done)
	if err != nil {
		h.writeActionError(w, ctx, err, "Failed to update action")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAPIAction(a))
}

// HandleDelete godoc
//
//	@Summary		Delete Action
//	@Description	Remove an action from its goal. Rejected with 423 while the goal is "reformulado".
//	@Tags			Actions
//	@Produce		json
//	@Param			id	path		string	true	"Action id"
//	@Success		200	{object}	coachapi.StatusResponse
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Failure		423	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/actions/{id} [delete].
func (h *ActionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.ActionService.Delete(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id")); err != nil {
		h.writeActionError(w, ctx, err, "Failed to delete action")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "deleted"})
}

func (h *ActionsHandler) writeActionError(w http.ResponseWriter, ctx context.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Goal not found")
	case errors.Is(err, service.ErrActionNotFound):
		writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Action not found")
	case errors.Is(err, service.ErrGoalLocked):
		writeError(w, http.StatusLocked, coachapi.ErrCodeGoalLocked, "Goal is reformulated; its actions are read-only")
	case errors.Is(err, service.ErrInvalidActionKind):
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "kind must be habilitante or inhabilitante")
	case errors.Is(err, service.ErrEmptyActionText):
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "description is required")
	default:
		slogx.FromContext(ctx).Error(fallback, "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, fallback)
	}
}

func toAPIAction(a domain.Action) coachapi.Action {
	return coachapi.Action{
		ID:          a.ID,
		GoalID:      a.GoalID,
		Kind:        a.Kind,
		Description: a.Description,
		Done:        a.Done,
		CreatedAt:   a.CreatedAt,
	}
}
