package handlers

import (
	"context"
	"net/http"
	"time"

	"valour-interiors/quotes_backend/internal/app/http/responses"
)

const healthTimeout = 2 * time.Second

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.WarnErr(r.Context(), "health.db_unreachable", err)
		responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "ok", "database": "ok"})
}
