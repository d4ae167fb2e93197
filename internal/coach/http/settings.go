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

type SettingsHandler struct {
	SettingsService *service.SettingsService
}

// HandleList godoc
//
//	@Summary		List Settings
//	@Description	Return all application settings. Admin only.
//	@Tags			Settings
//	@Produce		json
//	@Success		200	{object}	coachapi.SettingListResponse
//	@Security		BearerAuth
//	@Router			/v1/settings [get].
func (h *SettingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.SettingsService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list settings", "err", err)
		writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to list settings")
		return
	}

	out := coachapi.SettingListResponse{Settings: make([]coachapi.Setting, 0, len(settings))}
	for _, s := range settings {
		out.Settings = append(out.Settings, coachapi.Setting{
			Key:       s.Key,
			Value:     s.Value,
			UpdatedAt: s.UpdatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get Setting
//	@Description	Return one application setting by key. Admin only.
//	@Tags			Settings
//	@Produce		json
//	@Param			key	path		string	true	"Setting key"
//	@Success		200	{object}	coachapi.Setting
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/settings/{key} [get].
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s, err := h.SettingsService.Get(ctx, r.PathValue("key"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSettingNotFound):
			writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "Setting not found")
		default:
			slogx.FromContext(ctx).Error("failed to get setting", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to get setting")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.Setting{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	})
}

// HandlePut godoc
//
//	@Summary		Put Setting
//	@Description	Create or overwrite an application setting. Admin only.
//	@Tags			Settings
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string						true	"Setting key"
//	@Param			body	body		coachapi.PutSettingRequest	true	"Value"
//	@Success		200		{object}	coachapi.StatusResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/settings/{key} [put].
func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.PutSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := h.SettingsService.Put(ctx, r.PathValue("key"), req.Value); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySettingKey):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "key is required")
		default:
			slogx.FromContext(ctx).Error("failed to put setting", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to put setting")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "ok"})
}
