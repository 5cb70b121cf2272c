package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/export"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/service/study_plan"
)

// CreatePlanRequest is the body of POST /plans. Dates use YYYY-MM-DD.
type CreatePlanRequest struct {
	CurriculumID       string `json:"curriculum_id"          validate:"required,uuid"`
	ExamID             string `json:"exam_id,omitempty"      validate:"omitempty,uuid"`
	StartDate          string `json:"start_date,omitempty"`
	EndDate            string `json:"end_date,omitempty"`
	DailyTargetMinutes int    `json:"daily_target_minutes"   validate:"required,min=1,max=1440"`
	IncludeWeekends    bool   `json:"include_weekends"`
	IncludeFinalReview bool   `json:"include_final_review"`
	LearningStyle      string `json:"learning_style,omitempty"`
}

// ToPlanRequest converts the body into the service request.
func (r CreatePlanRequest) ToPlanRequest() (study_plan.PlanRequest, error) {
	var out study_plan.PlanRequest

	curriculumID, err := uuid.Parse(r.CurriculumID)
	if err != nil {
		return out, domain.NewValidationError("curriculum_id", "must be a UUID", nil)
	}
	out.CurriculumID = curriculumID

	if r.ExamID != "" {
		examID, err := uuid.Parse(r.ExamID)
		if err != nil {
			return out, domain.NewValidationError("exam_id", "must be a UUID", nil)
		}
		out.ExamID = &examID
	}

	if r.StartDate != "" {
		start, err := time.Parse(time.DateOnly, r.StartDate)
		if err != nil {
			return out, domain.NewValidationError("start_date", "must be YYYY-MM-DD", nil)
		}
		out.StartDate = start
	}
	if r.EndDate != "" {
		end, err := time.Parse(time.DateOnly, r.EndDate)
		if err != nil {
			return out, domain.NewValidationError("end_date", "must be YYYY-MM-DD", nil)
		}
		out.EndDate = &end
	}

	style, err := domain.ParseLearningStyle(r.LearningStyle)
	if err != nil {
		return out, domain.NewValidationError("learning_style", "unknown learning style", nil)
	}
	out.LearningStyle = style

	out.DailyTargetMinutes = r.DailyTargetMinutes
	out.IncludeWeekends = r.IncludeWeekends
	out.IncludeFinalReview = r.IncludeFinalReview
	return out, nil
}

// PlanHandler handles study plan requests.
type PlanHandler struct {
	planService study_plan.StudyPlanService
	logger      *slog.Logger
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planService study_plan.StudyPlanService, logger *slog.Logger) *PlanHandler {
	if planService == nil {
		panic("planService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{
		planService: planService,
		logger:      logger.With(slog.String("component", "plan_handler")),
	}
}

// CreatePlan handles POST /plans. With ?format=xlsx the stored plan is
// returned as a spreadsheet instead of JSON.
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := learnerIDFromRequest(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "xlsx" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unsupported format")
		return
	}

	var body CreatePlanRequest
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	req, err := body.ToPlanRequest()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	plan, err := h.planService.GeneratePlan(r.Context(), learnerID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate study plan")
		return
	}

	log.Info("study plan created",
		slog.String("plan_id", plan.ID.String()),
		slog.Int("sessions", plan.TotalSessions))

	if format != "xlsx" {
		shared.RespondWithJSON(w, r, http.StatusCreated, plan)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="study-plan-%s.xlsx"`, plan.ID))
	w.WriteHeader(http.StatusCreated)
	if err := export.WritePlanXLSX(w, plan); err != nil {
		log.Error("failed to write plan workbook",
			slog.String("plan_id", plan.ID.String()),
			slog.String("error", err.Error()))
	}
}
