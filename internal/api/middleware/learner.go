package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/platform/logger"
)

// LearnerIDHeader carries the learner identity asserted by the upstream gateway.
const LearnerIDHeader = "X-Learner-ID"

// LearnerIdentity stores the learner ID from LearnerIDHeader in the request
// context. Requests without a valid ID are rejected with 401.
func LearnerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(LearnerIDHeader)
		learnerID, err := uuid.Parse(raw)
		if raw == "" || err != nil || learnerID == uuid.Nil {
			logger.FromContextOrDefault(r.Context(), slog.Default()).
				Debug("missing or invalid learner identity", slog.Bool("present", raw != ""))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner identity required")
			return
		}

		ctx := shared.WithLearnerID(r.Context(), learnerID)
		log := logger.FromContextOrDefault(ctx, slog.Default()).
			With(slog.String("learner_id", learnerID.String()))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
	})
}
