package http

import (
	"errors"
	"net/http"

	"github.com/quierolab/quiero/internal/coach/service"
	"github.com/quierolab/quiero/pkg/coachapi"
	"github.com/quierolab/quiero/pkg/httpx"
	"github.com/quierolab/quiero/pkg/slogx"
)

type LandingHandler struct {
	RoutingService *service.RoutingService
}

// ServeHTTP godoc
//
//	@Summary		Landing Destination
//	@Description	Resolve the caller's landing destination from their roles: admin+coach gives "selector", admin gives "admin", coach gives "coach", everything else gives "coachee". An account with no profile resolves to 409 and the client should sign the user out.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	coachapi.LandingResponse
//	@Failure		409	{object}	coachapi.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/landing [get].
func (h *LandingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	landing, err := h.RoutingService.Resolve(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnresolved):
			writeError(w, http.StatusConflict, coachapi.ErrCodeUnresolved, "No destination could be resolved; sign out and try again")
		default:
			log.Error("failed to resolve landing", "err", err)
			writeError(w, http.StatusInternalServerError, coachapi.ErrCodeServerError, "Failed to resolve destination")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, coachapi.LandingResponse{Landing: string(landing)})
}
