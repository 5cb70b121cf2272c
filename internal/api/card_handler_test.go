package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/service"
	"github.com/synaptic/study-engine/internal/service/card_review"
	"github.com/synaptic/study-engine/internal/store"
)

func TestListDue(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()

	card, err := domain.NewStudyCard(learnerID, "Cardiology", "front", "back")
	require.NoError(t, err)

	tests := []struct {
		name       string
		target     string
		learnerID  uuid.UUID
		cards      []*domain.StudyCard
		err        error
		wantStatus int
		wantLimit  int
		wantCount  int
	}{
		{"default limit", "/api/cards/due", learnerID, []*domain.StudyCard{card}, nil, http.StatusOK, 0, 1},
		{"explicit limit", "/api/cards/due?limit=5", learnerID, nil, nil, http.StatusOK, 5, 0},
		{"bad limit", "/api/cards/due?limit=abc", learnerID, nil, nil, http.StatusBadRequest, -1, 0},
		{"no learner", "/api/cards/due", uuid.Nil, nil, nil, http.StatusUnauthorized, -1, 0},
		{"store failure", "/api/cards/due", learnerID, nil, errors.New("connection reset"), http.StatusInternalServerError, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotLimit := -1
			svc := &mockCardReviewService{
				listDueFn: func(_ context.Context, id uuid.UUID, limit int) ([]*domain.StudyCard, error) {
					assert.Equal(t, learnerID, id)
					gotLimit = limit
					return tt.cards, tt.err
				},
			}
			h := NewCardHandler(svc, nil)

			rec := httptest.NewRecorder()
			h.ListDue(rec, newRequest(http.MethodGet, tt.target, "", tt.learnerID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLimit, gotLimit)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp DueCardsResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.NotNil(t, resp.Cards)
		})
	}
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()
	learnerID := uuid.New()
	cardID := uuid.New()

	tests := []struct {
		name       string
		cardParam  string
		body       string
		serviceErr error
		wantStatus int
		wantGrade  domain.ReviewGrade
		wantError  string
	}{
		{
			name:       "grade name",
			cardParam:  cardID.String(),
			body:       `{"grade":"good"}`,
			wantStatus: http.StatusOK,
			wantGrade:  domain.GradeGood,
		},
		{
			name:       "quality score",
			cardParam:  cardID.String(),
			body:       `{"quality":2}`,
			wantStatus: http.StatusOK,
			wantGrade:  domain.GradeAgain,
		},
		{
			name:       "both forms",
			cardParam:  cardID.String(),
			body:       `{"grade":"easy","quality":5}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid grade: provide exactly one of grade or quality",
		},
		{
			name:       "neither form",
			cardParam:  cardID.String(),
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown grade",
			cardParam:  cardID.String(),
			body:       `{"grade":"perfect"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid Grade: invalid value",
		},
		{
			name:       "quality out of range",
			cardParam:  cardID.String(),
			body:       `{"quality":6}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid Quality: too large",
		},
		{
			name:       "malformed body",
			cardParam:  cardID.String(),
			body:       `{"grade":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "bad card id",
			cardParam:  "not-a-uuid",
			body:       `{"grade":"good"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid card ID",
		},
		{
			name:       "card not found",
			cardParam:  cardID.String(),
			body:       `{"grade":"hard"}`,
			wantGrade:  domain.GradeHard,
			serviceErr: card_review.ErrCardNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "Card not found",
		},
		{
			name:       "key in progress",
			cardParam:  cardID.String(),
			body:       `{"grade":"hard"}`,
			wantGrade:  domain.GradeHard,
			serviceErr: store.ErrRequestInProgress,
			wantStatus: http.StatusConflict,
		},
		{
			name:      "persist failure",
			cardParam: cardID.String(),
			body:      `{"grade":"hard"}`,
			wantGrade: domain.GradeHard,
			serviceErr: service.NewServiceError("submit_review", "failed to save review",
				fmt.Errorf("%w: %w", card_review.ErrPersistFailed, store.ErrTransactionFailed)),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Review could not be saved, please retry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			called := false
			svc := &mockCardReviewService{
				submitReviewFn: func(
					_ context.Context,
					lid, cid uuid.UUID,
					req card_review.ReviewRequest,
				) (*card_review.ReviewResult, error) {
					called = true
					assert.Equal(t, learnerID, lid)
					assert.Equal(t, cardID, cid)
					assert.Equal(t, tt.wantGrade, req.Grade)
					assert.Equal(t, "retry-1", req.IdempotencyKey)
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &card_review.ReviewResult{Retention: 1, ReviewedAt: time.Now().UTC()}, nil
				},
			}
			h := NewCardHandler(svc, nil)

			req := newRequest(http.MethodPost, "/api/cards/"+tt.cardParam+"/review", tt.body, learnerID,
				"id", tt.cardParam)
			req.Header.Set(IdempotencyKeyHeader, "retry-1")
			rec := httptest.NewRecorder()
			h.SubmitReview(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK || tt.serviceErr != nil {
				assert.True(t, called)
			} else {
				assert.False(t, called, "service must not be called for a rejected request")
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rec).Error)
			}
		})
	}
}

func TestSubmitReviewRequiresLearner(t *testing.T) {
	t.Parallel()
	h := NewCardHandler(&mockCardReviewService{}, nil)

	rec := httptest.NewRecorder()
	h.SubmitReview(rec, newRequest(http.MethodPost, "/api/cards/x/review", `{"grade":"good"}`, uuid.Nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
