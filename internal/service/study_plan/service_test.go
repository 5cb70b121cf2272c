package study_plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/domain/plan"
	"github.com/synaptic/study-engine/internal/mocks"
	"github.com/synaptic/study-engine/internal/service"
	"github.com/synaptic/study-engine/internal/store"
)

var fixedNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc       StudyPlanService
	sqlMock   sqlmock.Sqlmock
	curricula *mocks.MockCurriculumStore
	plans     *mocks.MockPlanStore
	learners  *mocks.MockLearnerStore
	exams     *mocks.MockExamStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rawDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rawDB.Close() })

	generator, err := plan.NewGenerator(nil)
	require.NoError(t, err)

	f := &fixture{
		sqlMock:   sqlMock,
		curricula: &mocks.MockCurriculumStore{},
		plans:     &mocks.MockPlanStore{},
		learners:  &mocks.MockLearnerStore{},
		exams:     &mocks.MockExamStore{},
	}
	f.svc = NewStudyPlanService(sqlx.NewDb(rawDB, "pgx"), Stores{
		Curricula: f.curricula,
		Plans:     f.plans,
		Learners:  f.learners,
		Exams:     f.exams,
	}, generator, func() time.Time { return fixedNow }, nil)

	t.Cleanup(func() {
		f.curricula.AssertExpectations(t)
		f.plans.AssertExpectations(t)
		f.learners.AssertExpectations(t)
		f.exams.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
	return f
}

func weeks(curriculumID uuid.UUID, n int) []domain.CurriculumWeek {
	out := make([]domain.CurriculumWeek, n)
	for i := range out {
		out[i] = domain.CurriculumWeek{CurriculumID: curriculumID, WeekNumber: i + 1, Topic: "Unit " + string(rune('A'+i))}
	}
	return out
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func TestGeneratePlanUsesProfileStyle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID, curriculumID := uuid.New(), uuid.New()

	f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 2), nil)
	f.learners.On("GetProfile", mock.Anything, learnerID).Return(&domain.LearnerProfile{
		LearnerID:     learnerID,
		LearningStyle: domain.StyleKinesthetic,
	}, nil)
	f.sqlMock.ExpectBegin()
	f.plans.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.StudyPlan) bool {
		return p.LearnerID == learnerID && p.TotalSessions == 5 && *p.CurriculumID == curriculumID
	})).Return(nil)
	f.plans.On("CreateSessions", mock.Anything, mock.MatchedBy(func(s []domain.StudySession) bool {
		for _, sess := range s {
			if sess.LearnerID != learnerID {
				return false
			}
		}
		return len(s) == 5
	})).Return(nil)
	f.sqlMock.ExpectCommit()

	p, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
		CurriculumID:       curriculumID,
		StartDate:          day("2026-09-07"),
		EndDate:            ptr(day("2026-09-11")),
		DailyTargetMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StyleKinesthetic, p.LearningStyle)
	assert.Equal(t, domain.ModeHandsOn, p.Sessions[0].Mode)
	assert.Equal(t, 2, p.WeekCount)
	assert.Equal(t, day("2026-09-07"), p.StartDate)
	assert.Equal(t, day("2026-09-11"), p.EndDate)
}

func TestGeneratePlanEndDateFromExam(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID, curriculumID, examID := uuid.New(), uuid.New(), uuid.New()

	f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 1), nil)
	f.exams.On("GetByID", mock.Anything, learnerID, examID).Return(&domain.Exam{
		ID:       examID,
		ExamDate: day("2026-09-09"),
	}, nil)
	f.sqlMock.ExpectBegin()
	f.plans.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.plans.On("CreateSessions", mock.Anything, mock.Anything).Return(nil)
	f.sqlMock.ExpectCommit()

	p, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
		CurriculumID:       curriculumID,
		ExamID:             &examID,
		StartDate:          day("2026-09-07"),
		DailyTargetMinutes: 45,
		LearningStyle:      domain.StyleVisual,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalSessions)
	assert.Equal(t, day("2026-09-09"), p.EndDate)
	assert.Equal(t, &examID, p.ExamID)
	f.learners.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
}

func TestGeneratePlanWithoutProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	learnerID, curriculumID := uuid.New(), uuid.New()

	f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 1), nil)
	f.learners.On("GetProfile", mock.Anything, learnerID).Return(nil, store.ErrLearnerNotFound)
	f.sqlMock.ExpectBegin()
	f.plans.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.plans.On("CreateSessions", mock.Anything, mock.Anything).Return(nil)
	f.sqlMock.ExpectCommit()

	p, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
		CurriculumID:       curriculumID,
		StartDate:          day("2026-09-07"),
		EndDate:            ptr(day("2026-09-08")),
		DailyTargetMinutes: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LearningStyle(""), p.LearningStyle)
	assert.Equal(t, domain.ModeReading, p.Sessions[0].Mode)
}

func TestGeneratePlanErrors(t *testing.T) {
	t.Parallel()

	t.Run("curriculum not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		learnerID, curriculumID := uuid.New(), uuid.New()
		f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(nil, store.ErrCurriculumNotFound)

		_, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
			CurriculumID: curriculumID,
			EndDate:      ptr(day("2026-09-30")),
		})
		assert.ErrorIs(t, err, ErrCurriculumNotFound)
	})

	t.Run("missing end date", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		learnerID, curriculumID := uuid.New(), uuid.New()
		f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 1), nil)

		_, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{CurriculumID: curriculumID})
		assert.ErrorIs(t, err, ErrMissingEndDate)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("exam date passed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		learnerID, curriculumID := uuid.New(), uuid.New()
		f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 1), nil)

		_, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
			CurriculumID:       curriculumID,
			StartDate:          day("2026-08-01"),
			EndDate:            ptr(day("2026-08-20")),
			DailyTargetMinutes: 60,
			LearningStyle:      domain.StyleMixed,
		})
		assert.ErrorIs(t, err, plan.ErrExamDatePassed)
	})

	t.Run("weekend only range", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		learnerID, curriculumID := uuid.New(), uuid.New()
		f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 1), nil)

		_, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
			CurriculumID:       curriculumID,
			StartDate:          day("2026-09-12"),
			EndDate:            ptr(day("2026-09-13")),
			DailyTargetMinutes: 60,
			LearningStyle:      domain.StyleMixed,
		})
		assert.ErrorIs(t, err, ErrNoSessionsGenerated)
	})

	t.Run("persist failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		learnerID, curriculumID := uuid.New(), uuid.New()
		f.curricula.On("GetWeeks", mock.Anything, learnerID, curriculumID).Return(weeks(curriculumID, 1), nil)
		f.sqlMock.ExpectBegin()
		f.plans.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.plans.On("CreateSessions", mock.Anything, mock.Anything).Return(errors.New("constraint"))
		f.sqlMock.ExpectRollback()

		_, err := f.svc.GeneratePlan(context.Background(), learnerID, PlanRequest{
			CurriculumID:       curriculumID,
			StartDate:          day("2026-09-07"),
			EndDate:            ptr(day("2026-09-09")),
			DailyTargetMinutes: 60,
			LearningStyle:      domain.StyleMixed,
		})
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, opGenerate, svcErr.Operation)
	})
}
