package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// server runs without a database.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HandleHealth handles GET /health requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
