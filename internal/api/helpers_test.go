package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/domain"
	gapanalysis "github.com/synaptic/study-engine/internal/domain/gaps"
	"github.com/synaptic/study-engine/internal/service/card_review"
	"github.com/synaptic/study-engine/internal/service/readiness"
	"github.com/synaptic/study-engine/internal/service/study_plan"
)

type mockCardReviewService struct {
	listDueFn      func(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.StudyCard, error)
	submitReviewFn func(ctx context.Context, learnerID, cardID uuid.UUID, req card_review.ReviewRequest) (*card_review.ReviewResult, error)
}

func (m *mockCardReviewService) ListDue(ctx context.Context, learnerID uuid.UUID, limit int) ([]*domain.StudyCard, error) {
	return m.listDueFn(ctx, learnerID, limit)
}

func (m *mockCardReviewService) SubmitReview(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
	req card_review.ReviewRequest,
) (*card_review.ReviewResult, error) {
	return m.submitReviewFn(ctx, learnerID, cardID, req)
}

type mockReadinessService struct {
	calculateFn func(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*readiness.Readiness, error)
}

func (m *mockReadinessService) CalculateReadiness(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
) (*readiness.Readiness, error) {
	return m.calculateFn(ctx, learnerID, examID)
}

type mockGapService struct {
	analyzeFn func(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*gapanalysis.Report, error)
}

func (m *mockGapService) Analyze(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*gapanalysis.Report, error) {
	return m.analyzeFn(ctx, learnerID, examID)
}

type mockStudyPlanService struct {
	generateFn func(ctx context.Context, learnerID uuid.UUID, req study_plan.PlanRequest) (*domain.StudyPlan, error)
}

func (m *mockStudyPlanService) GeneratePlan(
	ctx context.Context,
	learnerID uuid.UUID,
	req study_plan.PlanRequest,
) (*domain.StudyPlan, error) {
	return m.generateFn(ctx, learnerID, req)
}

// newRequest builds a request carrying learnerID (unless Nil) and the chi
// URL params given as name/value pairs.
func newRequest(method, target, body string, learnerID uuid.UUID, params ...string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	ctx := req.Context()
	if learnerID != uuid.Nil {
		ctx = shared.WithLearnerID(ctx, learnerID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
