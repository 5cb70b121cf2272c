package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/store"
)

// PostgresSnapshotStore implements store.SnapshotStore.
type PostgresSnapshotStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSnapshotStore creates a snapshot store.
func NewPostgresSnapshotStore(db store.DBTX, logger *slog.Logger) *PostgresSnapshotStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "snapshot_store")),
	}
}

var _ store.SnapshotStore = (*PostgresSnapshotStore)(nil)

// WithTx implements store.SnapshotStore.WithTx
func (s *PostgresSnapshotStore) WithTx(tx *sqlx.Tx) store.SnapshotStore {
	return &PostgresSnapshotStore{db: tx, logger: s.logger}
}

// Create implements store.SnapshotStore.Create
func (s *PostgresSnapshotStore) Create(ctx context.Context, snapshot *domain.ReadinessSnapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO readiness_snapshots (
			id, learner_id, exam_id, overall_score, topic_coverage, mastery_level,
			mock_exam_performance, consistency_bonus, trend, created_at)
		VALUES (
			:id, :learner_id, :exam_id, :overall_score, :topic_coverage, :mastery_level,
			:mock_exam_performance, :consistency_bonus, :trend, :created_at)
	`
	if _, err := s.db.NamedExecContext(ctx, query, snapshot); err != nil {
		log.Error("failed to create readiness snapshot",
			slog.String("error", err.Error()),
			slog.String("learner_id", snapshot.LearnerID.String()))
		return MapError(err)
	}

	log.Info("readiness snapshot created",
		slog.String("snapshot_id", snapshot.ID.String()),
		slog.String("learner_id", snapshot.LearnerID.String()),
		slog.Int("overall_score", snapshot.OverallScore),
		slog.String("trend", string(snapshot.Trend)))
	return nil
}

// GetLatest implements store.SnapshotStore.GetLatest
func (s *PostgresSnapshotStore) GetLatest(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
) (*domain.ReadinessSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, learner_id, exam_id, overall_score, topic_coverage, mastery_level,
			mock_exam_performance, consistency_bonus, trend, created_at
		FROM readiness_snapshots
		WHERE learner_id = $1 AND exam_id IS NOT DISTINCT FROM $2::uuid
		ORDER BY created_at DESC
		LIMIT 1
	`
	var snapshot domain.ReadinessSnapshot
	if err := s.db.GetContext(ctx, &snapshot, query, learnerID, examID); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrNotFound) {
			return nil, store.ErrSnapshotNotFound
		}
		log.Error("failed to get latest snapshot",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, mapped
	}
	return &snapshot, nil
}
