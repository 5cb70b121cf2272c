package api

import (
	"log/slog"
	"net/http"

	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/platform/logger"
	gapsvc "github.com/synaptic/study-engine/internal/service/gaps"
	"github.com/synaptic/study-engine/internal/service/readiness"
)

// InsightsHandler serves readiness scores and knowledge gap reports.
type InsightsHandler struct {
	readinessService readiness.ReadinessService
	gapService       gapsvc.GapService
	logger           *slog.Logger
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(
	readinessService readiness.ReadinessService,
	gapService gapsvc.GapService,
	logger *slog.Logger,
) *InsightsHandler {
	if readinessService == nil {
		panic("readinessService cannot be nil")
	}
	if gapService == nil {
		panic("gapService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InsightsHandler{
		readinessService: readinessService,
		gapService:       gapService,
		logger:           logger.With(slog.String("component", "insights_handler")),
	}
}

// GetReadiness handles GET /readiness. The optional exam_id query parameter
// scopes the score to one exam.
func (h *InsightsHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerIDFromRequest(w, r)
	if !ok {
		return
	}
	examID, err := optionalQueryUUID(r, "exam_id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exam ID")
		return
	}

	result, err := h.readinessService.CalculateReadiness(r.Context(), learnerID, examID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to calculate readiness")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("readiness calculated",
		slog.Int("score", result.OverallScore),
		slog.String("trend", string(result.Trend)))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetGaps handles GET /gaps with an optional exam_id query parameter.
func (h *InsightsHandler) GetGaps(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerIDFromRequest(w, r)
	if !ok {
		return
	}
	examID, err := optionalQueryUUID(r, "exam_id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid exam ID")
		return
	}

	report, err := h.gapService.Analyze(r.Context(), learnerID, examID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyze knowledge gaps")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}
