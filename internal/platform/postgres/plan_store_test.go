package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptic/study-engine/internal/domain"
	"github.com/synaptic/study-engine/internal/store"
)

func TestCurriculumStore_GetWeeks(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresCurriculumStore(db, nil)

	learnerID, curriculumID := uuid.New(), uuid.New()
	cols := []string{"curriculum_id", "week_number", "topic", "readings", "assignments", "objectives"}
	mock.ExpectQuery(`FROM curriculum_weeks w`).
		WithArgs(curriculumID, learnerID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(curriculumID.String(), 1, "Cells", "{ch1,ch2}", "{}", "{\"Explain osmosis\"}").
			AddRow(curriculumID.String(), 2, "Genetics", "{ch3}", "{ps1}", "{}"))

	weeks, err := s.GetWeeks(context.Background(), learnerID, curriculumID)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, 1, weeks[0].WeekNumber)
	assert.Equal(t, []string{"ch1", "ch2"}, weeks[0].Readings)
	assert.Equal(t, []string{"Explain osmosis"}, weeks[0].Objectives)
	assert.Equal(t, []string{"ps1"}, weeks[1].Assignments)

	mock.ExpectQuery(`FROM curriculum_weeks w`).WillReturnRows(sqlmock.NewRows(cols))
	_, err = s.GetWeeks(context.Background(), learnerID, uuid.New())
	assert.ErrorIs(t, err, store.ErrCurriculumNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanStore_CreateInTransaction(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresPlanStore(db, nil)

	learnerID := uuid.New()
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	plan := &domain.StudyPlan{
		ID:          uuid.New(),
		LearnerID:   learnerID,
		StartDate:   day,
		EndDate:     day.AddDate(0, 0, 1),
		DailyTarget: 60,
		CreatedAt:   day,
	}
	sessions := []domain.StudySession{
		{ID: uuid.New(), PlanID: plan.ID, LearnerID: learnerID, ScheduledDate: day, EstimatedMinutes: 60,
			Mode: domain.ModeReading, Topic: "Cells", WeekNumber: 1, Role: domain.RoleNew, Status: domain.SessionPending},
		{ID: uuid.New(), PlanID: plan.ID, LearnerID: learnerID, ScheduledDate: day.AddDate(0, 0, 1), EstimatedMinutes: 60,
			Mode: domain.ModePracticeTest, Topic: "Cells", WeekNumber: 1, Role: domain.RoleAssessment, Status: domain.SessionPending},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO study_plans`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO study_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO study_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sqlx.Tx) error {
		txStore := s.WithTx(tx)
		if err := txStore.Create(ctx, plan); err != nil {
			return err
		}
		return txStore.CreateSessions(ctx, sessions)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLearnerStore_GetProfile(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresLearnerStore(db, nil)

	learnerID := uuid.New()
	cols := []string{"learner_id", "learning_style", "updated_at"}
	mock.ExpectQuery(`FROM learners`).
		WithArgs(learnerID).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(learnerID.String(), "visual", time.Now().UTC()))

	profile, err := s.GetProfile(context.Background(), learnerID)
	require.NoError(t, err)
	assert.Equal(t, domain.StyleVisual, profile.LearningStyle)

	mock.ExpectQuery(`FROM learners`).WillReturnRows(sqlmock.NewRows(cols))
	_, err = s.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrLearnerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
