package api

import (
	"log/slog"
	"net/http"

	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/service/card_review"
)

// IdempotencyKeyHeader lets clients retry a review submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// SubmitReviewRequest is the body of POST /cards/{id}/review. Exactly one of
// Grade or Quality must be set.
type SubmitReviewRequest struct {
	Grade   string `json:"grade,omitempty"   validate:"omitempty,oneof=again hard good easy"`
	Quality *int   `json:"quality,omitempty" validate:"omitempty,min=0,max=5"`
}

// Validate enforces that exactly one grade form is present.
func (r SubmitReviewRequest) Validate() error {
	if (r.Grade == "") == (r.Quality == nil) {
		return domain.NewValidationError("grade", "provide exactly one of grade or quality", nil)
	}
	return nil
}

// ReviewGrade resolves the request into a grade.
func (r SubmitReviewRequest) ReviewGrade() (domain.ReviewGrade, error) {
	if r.Quality != nil {
		return domain.GradeFromQuality(*r.Quality)
	}
	return domain.ParseReviewGrade(r.Grade)
}

// DueCardsResponse lists the cards due for review.
type DueCardsResponse struct {
	Cards []*domain.StudyCard `json:"cards"`
	Count int                 `json:"count"`
}

// CardHandler handles card review requests.
type CardHandler struct {
	cardReviewService card_review.CardReviewService
	logger            *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardReviewService card_review.CardReviewService, logger *slog.Logger) *CardHandler {
	if cardReviewService == nil {
		panic("cardReviewService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		cardReviewService: cardReviewService,
		logger:            logger.With(slog.String("component", "card_handler")),
	}
}

// ListDue handles GET /cards/due.
func (h *CardHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	learnerID, ok := learnerIDFromRequest(w, r)
	if !ok {
		return
	}

	limit, err := optionalQueryInt(r, "limit")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
		return
	}

	cards, err := h.cardReviewService.ListDue(r.Context(), learnerID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due cards")
		return
	}
	if cards == nil {
		cards = []*domain.StudyCard{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DueCardsResponse{Cards: cards, Count: len(cards)})
}

// SubmitReview handles POST /cards/{id}/review.
func (h *CardHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := learnerIDFromRequest(w, r)
	if !ok {
		return
	}

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	grade, err := req.ReviewGrade()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.cardReviewService.SubmitReview(r.Context(), learnerID, cardID, card_review.ReviewRequest{
		Grade:          grade,
		IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("card_id", cardID.String()),
		slog.String("grade", string(grade)),
		slog.Bool("replayed", result.Replayed))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
