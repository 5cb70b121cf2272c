package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/redact"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler returns a handler reporting service and database health.
// A nil db reports only the process status.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "unchecked"}
		if db == nil {
			shared.RespondWithJSON(w, r, http.StatusOK, resp)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("health check failed",
				slog.String("error", redact.Error(err)))
			resp.Status = "degraded"
			resp.Database = "unreachable"
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "ok"
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
	}
}
