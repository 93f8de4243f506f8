package handler

import (
	"errors"
	"net/http"

	"github.com/centsible/centsible-go/internal/middleware"
	"github.com/centsible/centsible-go/internal/service"
)

// AnalyticsHandler handles HTTP requests for the report endpoints.
// Responses come back from the service as serialized JSON so cached
// reports skip re-encoding.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// HandleOverview handles GET /api/v1/analytics/overview requests.
func (h *AnalyticsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	data, err := h.service.Overview(r.Context(), principal.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeRawJSON(w, http.StatusOK, data)
}

// HandleDetailed handles GET /api/v1/analytics/detailed requests.
func (h *AnalyticsHandler) HandleDetailed(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	data, err := h.service.Detailed(r.Context(), principal.UserID, r.URL.Query().Get("timeRange"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}

	writeRawJSON(w, http.StatusOK, data)
}
