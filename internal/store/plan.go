package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/synaptic/study-engine/internal/domain"
)

// CurriculumStore reads weekly curricula.
type CurriculumStore interface {
	// GetWeeks returns the curriculum's weeks ordered by week number.
	// Returns ErrCurriculumNotFound when the curriculum has no weeks for the learner.
	GetWeeks(ctx context.Context, learnerID, curriculumID uuid.UUID) ([]domain.CurriculumWeek, error)
}

// PlanStore persists generated study plans and their sessions.
type PlanStore interface {
	// Create inserts the plan header.
	Create(ctx context.Context, plan *domain.StudyPlan) error

	// CreateSessions inserts the sessions of a plan.
	// IMPORTANT: run inside the same transaction as Create.
	CreateSessions(ctx context.Context, sessions []domain.StudySession) error

	// WithTx returns a PlanStore that runs its queries on tx.
	WithTx(tx *sqlx.Tx) PlanStore
}

// LearnerStore reads learner preferences.
type LearnerStore interface {
	// GetProfile returns the learner's profile.
	// Returns ErrLearnerNotFound when the learner has not stored preferences.
	GetProfile(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error)
}
