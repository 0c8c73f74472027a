package http

import (
	"net/http"

	"github.com/gatherly/api/internal/core/ports"
)

type HousekeepingHandler struct {
	service ports.HousekeepingService
}

func NewHousekeepingHandler(service ports.HousekeepingService) *HousekeepingHandler {
	return &HousekeepingHandler{
		service: service,
	}
}

type sweepResponse struct {
	Affected int64 `json:"affected"`
}

// SoftDeleteInactive godoc
// @Summary      Soft-deletes inactive polls
// @Description  Marks polls deleted that went untouched past the inactivity window, keep no future option and whose owner has no active subscription. Internal endpoint, guarded by the API secret.
// @Tags         housekeeping
// @Produce      json
// @Success      200  {object}  sweepResponse
// @Failure      401
// @Router       /api/housekeeping/soft-delete [post]
func (h *HousekeepingHandler) SoftDeleteInactive(w http.ResponseWriter, r *http.Request) {
	affected, err := h.service.SoftDeleteInactive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sweepResponse{Affected: affected})
}

// Purge godoc
// @Summary      Permanently removes long-deleted polls
// @Description  Hard-deletes polls soft-deleted past the grace period, in bounded batches. Internal endpoint, guarded by the API secret.
// @Tags         housekeeping
// @Produce      json
// @Success      200  {object}  sweepResponse
// @Failure      401
// @Router       /api/housekeeping/purge [post]
func (h *HousekeepingHandler) Purge(w http.ResponseWriter, r *http.Request) {
	affected, err := h.service.Purge(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sweepResponse{Affected: affected})
}
