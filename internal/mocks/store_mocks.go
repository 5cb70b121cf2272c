package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/store"
)

var (
	_ store.CardStore        = (*MockCardStore)(nil)
	_ store.ReviewLogStore   = (*MockReviewLogStore)(nil)
	_ store.AssessmentStore  = (*MockAssessmentStore)(nil)
	_ store.ExamStore        = (*MockExamStore)(nil)
	_ store.SnapshotStore    = (*MockSnapshotStore)(nil)
	_ store.CurriculumStore  = (*MockCurriculumStore)(nil)
	_ store.PlanStore        = (*MockPlanStore)(nil)
	_ store.LearnerStore     = (*MockLearnerStore)(nil)
	_ store.IdempotencyGuard = (*MockIdempotencyGuard)(nil)
)

// MockCardStore is a mock of store.CardStore
type MockCardStore struct {
	mock.Mock
}

// CreateMultiple is a mock implementation of store.CardStore.CreateMultiple
func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []*domain.StudyCard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

// GetByID is a mock implementation of store.CardStore.GetByID
func (m *MockCardStore) GetByID(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.StudyCard, error) {
	args := m.Called(ctx, learnerID, cardID)
	if card, ok := args.Get(0).(*domain.StudyCard); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetForUpdate is a mock implementation of store.CardStore.GetForUpdate
func (m *MockCardStore) GetForUpdate(ctx context.Context, learnerID, cardID uuid.UUID) (*domain.StudyCard, error) {
	args := m.Called(ctx, learnerID, cardID)
	if card, ok := args.Get(0).(*domain.StudyCard); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateSchedule is a mock implementation of store.CardStore.UpdateSchedule
func (m *MockCardStore) UpdateSchedule(ctx context.Context, card *domain.StudyCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

// ListByLearner is a mock implementation of store.CardStore.ListByLearner
func (m *MockCardStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.StudyCard, error) {
	args := m.Called(ctx, learnerID)
	if cards, ok := args.Get(0).([]*domain.StudyCard); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListDue is a mock implementation of store.CardStore.ListDue
func (m *MockCardStore) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.StudyCard, error) {
	args := m.Called(ctx, learnerID, now, limit)
	if cards, ok := args.Get(0).([]*domain.StudyCard); ok {
		return cards, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx returns the mock itself
func (m *MockCardStore) WithTx(*sqlx.Tx) store.CardStore { return m }

// MockReviewLogStore is a mock of store.ReviewLogStore
type MockReviewLogStore struct {
	mock.Mock
}

// Create is a mock implementation of store.ReviewLogStore.Create
func (m *MockReviewLogStore) Create(ctx context.Context, event *domain.ReviewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// StudyDays is a mock implementation of store.ReviewLogStore.StudyDays
func (m *MockReviewLogStore) StudyDays(ctx context.Context, learnerID uuid.UUID, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, learnerID, since)
	if days, ok := args.Get(0).([]time.Time); ok {
		return days, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActiveLearners is a mock implementation of store.ReviewLogStore.ActiveLearners
func (m *MockReviewLogStore) ActiveLearners(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, since)
	if ids, ok := args.Get(0).([]uuid.UUID); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx returns the mock itself
func (m *MockReviewLogStore) WithTx(*sqlx.Tx) store.ReviewLogStore { return m }

// MockAssessmentStore is a mock of store.AssessmentStore
type MockAssessmentStore struct {
	mock.Mock
}

// ListRecent is a mock implementation of store.AssessmentStore.ListRecent
func (m *MockAssessmentStore) ListRecent(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
	limit int,
) ([]domain.AssessmentAttempt, error) {
	args := m.Called(ctx, learnerID, examID, limit)
	if attempts, ok := args.Get(0).([]domain.AssessmentAttempt); ok {
		return attempts, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockExamStore is a mock of store.ExamStore
type MockExamStore struct {
	mock.Mock
}

// GetByID is a mock implementation of store.ExamStore.GetByID
func (m *MockExamStore) GetByID(ctx context.Context, learnerID, examID uuid.UUID) (*domain.Exam, error) {
	args := m.Called(ctx, learnerID, examID)
	if exam, ok := args.Get(0).(*domain.Exam); ok {
		return exam, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSnapshotStore is a mock of store.SnapshotStore
type MockSnapshotStore struct {
	mock.Mock
}

// Create is a mock implementation of store.SnapshotStore.Create
func (m *MockSnapshotStore) Create(ctx context.Context, snapshot *domain.ReadinessSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// GetLatest is a mock implementation of store.SnapshotStore.GetLatest
func (m *MockSnapshotStore) GetLatest(
	ctx context.Context,
	learnerID uuid.UUID,
	examID *uuid.UUID,
) (*domain.ReadinessSnapshot, error) {
	args := m.Called(ctx, learnerID, examID)
	if snap, ok := args.Get(0).(*domain.ReadinessSnapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx returns the mock itself
func (m *MockSnapshotStore) WithTx(*sqlx.Tx) store.SnapshotStore { return m }

// MockCurriculumStore is a mock of store.CurriculumStore
type MockCurriculumStore struct {
	mock.Mock
}

// GetWeeks is a mock implementation of store.CurriculumStore.GetWeeks
func (m *MockCurriculumStore) GetWeeks(
	ctx context.Context,
	learnerID, curriculumID uuid.UUID,
) ([]domain.CurriculumWeek, error) {
	args := m.Called(ctx, learnerID, curriculumID)
	if weeks, ok := args.Get(0).([]domain.CurriculumWeek); ok {
		return weeks, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPlanStore is a mock of store.PlanStore
type MockPlanStore struct {
	mock.Mock
}

// Create is a mock implementation of store.PlanStore.Create
func (m *MockPlanStore) Create(ctx context.Context, plan *domain.StudyPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// CreateSessions is a mock implementation of store.PlanStore.CreateSessions
func (m *MockPlanStore) CreateSessions(ctx context.Context, sessions []domain.StudySession) error {
	args := m.Called(ctx, sessions)
	return args.Error(0)
}

// WithTx returns the mock itself
func (m *MockPlanStore) WithTx(*sqlx.Tx) store.PlanStore { return m }

// MockLearnerStore is a mock of store.LearnerStore
type MockLearnerStore struct {
	mock.Mock
}

// GetProfile is a mock implementation of store.LearnerStore.GetProfile
func (m *MockLearnerStore) GetProfile(ctx context.Context, learnerID uuid.UUID) (*domain.LearnerProfile, error) {
	args := m.Called(ctx, learnerID)
	if profile, ok := args.Get(0).(*domain.LearnerProfile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdempotencyGuard is a mock of store.IdempotencyGuard
type MockIdempotencyGuard struct {
	mock.Mock
}

// Begin is a mock implementation of store.IdempotencyGuard.Begin
func (m *MockIdempotencyGuard) Begin(ctx context.Context, learnerID uuid.UUID, key string) ([]byte, bool, error) {
	args := m.Called(ctx, learnerID, key)
	cached, _ := args.Get(0).([]byte)
	return cached, args.Bool(1), args.Error(2)
}

// Complete is a mock implementation of store.IdempotencyGuard.Complete
func (m *MockIdempotencyGuard) Complete(ctx context.Context, learnerID uuid.UUID, key string, response []byte) error {
	args := m.Called(ctx, learnerID, key, response)
	return args.Error(0)
}

// Abort is a mock implementation of store.IdempotencyGuard.Abort
func (m *MockIdempotencyGuard) Abort(ctx context.Context, learnerID uuid.UUID, key string) error {
	args := m.Called(ctx, learnerID, key)
	return args.Error(0)
}
