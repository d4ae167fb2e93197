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

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe godoc
//
//	@Summary		Current User
//	@Description	Return the caller's own profile with roles.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	coachapi.UserProfileResponse
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, httpx.UserIDFromCtx(r.Context()))
}

// HandleGet godoc
//
//	@Summary		Get User
//	@Description	Return a user's profile with roles. Admin only.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	coachapi.UserProfileResponse
//	@Failure		404	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, r.PathValue("id"))
}

// HandleGrantRole godoc
//
//	@Summary		Grant Role
//	@Description	Assign a role (admin, coach or coachee) to a user. Granting an already-held role is a no-op. Admin only.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id"
//	@Param			body	body		coachapi.RoleRequest	true	"Role"
//	@Success		200		{object}	coachapi.StatusResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Failure		404		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles [post].
func (h *UsersHandler) HandleGrantRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := h.UserService.GrantRole(ctx, r.PathValue("id"), req.Role); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownRole):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Unknown role")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "User not found")
		default:
			slogx.FromContext(ctx).Error("failed to grant role", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to grant role")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "ok"})
}

// HandleRevokeRole godoc
//
//	@Summary		Revoke Role
//	@Description	Remove a role from a user. Admin only.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id"
//	@Param			body	body		coachapi.RoleRequest	true	"Role"
//	@Success		200		{object}	coachapi.StatusResponse
//	@Failure		400		{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/roles [delete].
func (h *UsersHandler) HandleRevokeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req coachapi.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := h.UserService.RevokeRole(ctx, r.PathValue("id"), req.Role); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownRole):
			writeError(w, http.StatusBadRequest, coachapi.ErrCodeInvalidRequest, "Unknown role")
		default:
			slogx.FromContext(ctx).Error("failed to revoke role", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to revoke role")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.StatusResponse{Status: "ok"})
}

func (h *UsersHandler) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	profile, err := h.UserService.Get(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, coachapi.ErrCodeNotFound, "User not found")
		default:
			slogx.FromContext(ctx).Error("failed to get user", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to get user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, coachapi.UserProfileResponse{
		ID:       profile.User.ID,
		Email:    profile.User.Email,
		FullName: profile.User.FullName,
		Active:   profile.User.Active,
		Roles:    profile.Roles,
	})
}
