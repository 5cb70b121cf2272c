package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
)

// AssessmentStore reads practice exam results written by the assessment subsystem.
type AssessmentStore interface {
	// ListRecent returns at most limit completed attempts, newest first.
	// When examID is non-nil only attempts for that exam are returned.
	ListRecent(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID, limit int) ([]domain.AssessmentAttempt, error)
}

// ExamStore reads exam definitions.
type ExamStore interface {
	// GetByID returns the learner's exam with its topic scope.
	// Returns ErrExamNotFound if it does not exist or belongs to another learner.
	GetByID(ctx context.Context, learnerID, examID uuid.UUID) (*domain.Exam, error)
}

// SnapshotStore persists readiness snapshots.
type SnapshotStore interface {
	// Create inserts a new snapshot. Snapshots are never updated.
	Create(ctx context.Context, snapshot *domain.ReadinessSnapshot) error

	// GetLatest returns the most recent snapshot for the learner and exam scope.
	// A nil examID selects snapshots without an exam.
	// Returns ErrSnapshotNotFound when there is none.
	GetLatest(ctx context.Context, learnerID uuid.UUID, examID *uuid.UUID) (*domain.ReadinessSnapshot, error)

	// WithTx returns a SnapshotStore that runs its queries on tx.
	WithTx(tx *sqlx.Tx) SnapshotStore
}
