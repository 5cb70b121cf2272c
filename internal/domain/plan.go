package domain

import (
	"time"

	"github.com/google/uuid"
)

// CurriculumWeek is one entry of a weekly schedule supplied by a syllabus or a
// self-study definition.
type CurriculumWeek struct {
	CurriculumID uuid.UUID `json:"curriculum_id" db:"curriculum_id"`
	WeekNumber   int       `json:"week_number" db:"week_number"`
	Topic        string    `json:"topic" db:"topic"`
	Readings     []string  `json:"readings,omitempty" db:"-"`
	Assignments  []string  `json:"assignments,omitempty" db:"-"`
	Objectives   []string  `json:"objectives,omitempty" db:"-"`
}

// ActivityMode is the kind of study activity scheduled for a session.
type ActivityMode string

// Activity modes
const (
	ModeReading        ActivityMode = "reading"
	ModeVideo          ActivityMode = "video"
	ModeFlashcards     ActivityMode = "flashcards"
	ModePracticeQuiz   ActivityMode = "practice_quiz"
	ModeAudioSummary   ActivityMode = "audio_summary"
	ModeDiscussion     ActivityMode = "discussion"
	ModeHandsOn        ActivityMode = "hands_on_exercise"
	ModeMindMap        ActivityMode = "mind_map"
	ModeWrittenSummary ActivityMode = "written_summary"
	ModePracticeTest   ActivityMode = "practice_test"
)

// SessionRole is the pedagogical purpose of a generated study day.
type SessionRole string

// Session roles
const (
	RoleNew         SessionRole = "new"
	RoleReview      SessionRole = "review"
	RoleAssessment  SessionRole = "assessment"
	RoleFinalReview SessionRole = "final_review"
)

// SessionStatus is owned by the session-tracking subsystem after generation.
type SessionStatus string

// Session statuses
const (
	SessionPending     SessionStatus = "pending"
	SessionCompleted   SessionStatus = "completed"
	SessionSkipped     SessionStatus = "skipped"
	SessionRescheduled SessionStatus = "rescheduled"
)

// StudySession is one generated entry of a study plan.
type StudySession struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	PlanID           uuid.UUID     `json:"plan_id" db:"plan_id"`
	LearnerID        uuid.UUID     `json:"learner_id" db:"learner_id"`
	ScheduledDate    time.Time     `json:"scheduled_date" db:"scheduled_date"`
	EstimatedMinutes int           `json:"estimated_minutes" db:"estimated_minutes"`
	Mode             ActivityMode  `json:"mode" db:"mode"`
	Topic            string        `json:"topic" db:"topic"`
	WeekNumber       int           `json:"week_number" db:"week_number"`
	Role             SessionRole   `json:"role" db:"role"`
	Status           SessionStatus `json:"status" db:"status"`
}

// StudyPlan is the persisted header of a generated plan.
type StudyPlan struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	LearnerID       uuid.UUID      `json:"learner_id" db:"learner_id"`
	CurriculumID    *uuid.UUID     `json:"curriculum_id,omitempty" db:"curriculum_id"`
	ExamID          *uuid.UUID     `json:"exam_id,omitempty" db:"exam_id"`
	StartDate       time.Time      `json:"start_date" db:"start_date"`
	EndDate         time.Time      `json:"end_date" db:"end_date"`
	DailyTarget     int            `json:"daily_target_minutes" db:"daily_target_minutes"`
	IncludeWeekends bool           `json:"include_weekends" db:"include_weekends"`
	LearningStyle   LearningStyle  `json:"learning_style" db:"learning_style"`
	TotalSessions   int            `json:"total_sessions" db:"total_sessions"`
	TotalHours      float64        `json:"total_hours" db:"total_hours"`
	WeekCount       int            `json:"week_count" db:"week_count"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	Sessions        []StudySession `json:"sessions" db:"-"`
}
