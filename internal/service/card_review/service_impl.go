package card_review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/domain/srs"
	"github.com/synaptic/study-engine/internal/events"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/service"
	"github.com/synaptic/study-engine/internal/store"
)

const (
	opSubmitReview = "submit_review"
	opListDue      = "list_due"

	defaultDueLimit = 20
	maxDueLimit     = 200
)

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	db         *sqlx.DB
	cards      store.CardStore
	reviews    store.ReviewLogStore
	srsService srs.Service
	guard      store.IdempotencyGuard
	emitter    events.EventEmitter
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures the service.
type Option func(*cardReviewServiceImpl)

// WithIdempotencyGuard enables replay protection for requests carrying a key.
func WithIdempotencyGuard(guard store.IdempotencyGuard) Option {
	return func(s *cardReviewServiceImpl) { s.guard = guard }
}

// WithEventEmitter publishes a review.recorded event after every committed review.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *cardReviewServiceImpl) { s.emitter = emitter }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *cardReviewServiceImpl) { s.now = now }
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	db *sqlx.DB,
	cards store.CardStore,
	reviews store.ReviewLogStore,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) CardReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if reviews == nil {
		panic("reviews cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &cardReviewServiceImpl{
		db:         db,
		cards:      cards,
		reviews:    reviews,
		srsService: srsService,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListDue implements CardReviewService.ListDue.
func (s *cardReviewServiceImpl) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	limit int,
) ([]*domain.StudyCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultDueLimit
	}
	limit = min(limit, maxDueLimit)

	cards, err := s.cards.ListDue(ctx, learnerID, s.now(), limit)
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, service.NewServiceError(opListDue, "failed to list due cards", err)
	}

	log.Debug("listed due cards",
		slog.String("learner_id", learnerID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// SubmitReview implements CardReviewService.SubmitReview.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
	req ReviewRequest,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learner_id", learnerID.String()),
		slog.String("card_id", cardID.String()))

	if !req.Grade.Valid() {
		log.Warn("invalid review grade", slog.String("grade", string(req.Grade)))
		return nil, fmt.Errorf("%w: %q", ErrInvalidGrade, req.Grade)
	}

	claimed := false
	if req.IdempotencyKey != "" && s.guard != nil {
		cached, started, err := s.guard.Begin(ctx, learnerID, req.IdempotencyKey)
		switch {
		case errors.Is(err, store.ErrRequestInProgress):
			return nil, err
		case err != nil:
			// The guard is an optimization; the review still goes through.
			log.Warn("idempotency guard unavailable", slog.String("error", err.Error()))
		case !started:
			var replay ReviewResult
			if err := json.Unmarshal(cached, &replay); err == nil {
				if replay.Card == nil || replay.Card.ID != cardID {
					log.Warn("idempotency key reused for another card")
					return nil, store.ErrIdempotencyKeyReused
				}
				replay.Replayed = true
				log.Info("returning replayed review result")
				return &replay, nil
			}
			log.Warn("discarding unreadable idempotent response")
		default:
			claimed = true
		}
	}

	result, err := s.applyReview(ctx, learnerID, cardID, req.Grade)
	if err != nil {
		if claimed {
			if abortErr := s.guard.Abort(ctx, learnerID, req.IdempotencyKey); abortErr != nil {
				log.Warn("failed to release idempotency key", slog.String("error", abortErr.Error()))
			}
		}
		return nil, err
	}

	if claimed {
		payload, err := json.Marshal(result)
		if err == nil {
			err = s.guard.Complete(ctx, learnerID, req.IdempotencyKey, payload)
		}
		if err != nil {
			log.Warn("failed to store idempotent response", slog.String("error", err.Error()))
		}
	}

	log.Info("review applied",
		slog.String("grade", string(req.Grade)),
		slog.Float64("ease_factor", result.Card.EaseFactor),
		slog.Int("interval_days", result.Card.IntervalDays),
		slog.String("tier", string(result.Card.MaturityTier)))

	s.emitReviewRecorded(ctx, log, result)
	return result, nil
}

// emitReviewRecorded announces a committed review. Failures are logged only;
// the review itself has already been stored.
func (s *cardReviewServiceImpl) emitReviewRecorded(ctx context.Context, log *slog.Logger, result *ReviewResult) {
	if s.emitter == nil {
		return
	}
	event, err := events.NewEvent(events.TypeReviewRecorded, result.Card.LearnerID, events.ReviewRecorded{
		CardID: result.Card.ID,
		Grade:  string(result.Event.Grade),
		Topic:  result.Card.Topic,
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit review event", slog.String("error", err.Error()))
	}
}

func (s *cardReviewServiceImpl) applyReview(
	ctx context.Context,
	learnerID, cardID uuid.UUID,
	grade domain.ReviewGrade,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var result *ReviewResult
	var computed bool

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		cards := s.cards.WithTx(tx)

		card, err := cards.GetForUpdate(ctx, learnerID, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to load card: %w", err)
		}

		next, err := s.srsService.Schedule(card, grade, now)
		if err != nil {
			return err
		}
		computed = true

		if err := cards.UpdateSchedule(ctx, next); err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}

		event := domain.NewReviewEvent(next, grade, now)
		if err := s.reviews.WithTx(tx).Create(ctx, event); err != nil {
			return fmt.Errorf("failed to record review: %w", err)
		}

		result = &ReviewResult{
			Card:       next,
			Event:      event,
			Retention:  s.srsService.Retention(next, now),
			ReviewedAt: now,
		}
		return nil
	})

	if err == nil {
		return result, nil
	}

	if errors.Is(err, ErrCardNotFound) || (!computed && errors.Is(err, domain.ErrValidation)) {
		return nil, err
	}

	log.Error("failed to submit review",
		slog.String("error", err.Error()),
		slog.String("card_id", cardID.String()),
		slog.Bool("computed", computed))

	if computed || errors.Is(err, store.ErrTransactionFailed) {
		return nil, service.NewServiceError(opSubmitReview, ErrPersistFailed.Error(),
			fmt.Errorf("%w: %w", ErrPersistFailed, err))
	}
	return nil, service.NewServiceError(opSubmitReview, "failed to submit review", err)
}
