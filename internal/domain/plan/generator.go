// Package plan lays a weekly curriculum out over calendar days and assigns
// an activity and duration to every study day.
package plan

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/synaptic/study-engine/internal/domain"
)

// Generation errors. Request errors wrap domain.ErrValidation.
var (
	ErrEmptyCurriculum     = fmt.Errorf("%w: curriculum has no weeks", domain.ErrValidation)
	ErrInvalidDateRange    = fmt.Errorf("%w: end date is before start date", domain.ErrValidation)
	ErrExamDatePassed      = fmt.Errorf("%w: end date has already passed", domain.ErrValidation)
	ErrInvalidDailyTarget  = fmt.Errorf("%w: daily target must be positive", domain.ErrValidation)
	ErrPlanTooLong         = fmt.Errorf("%w: date range is too long", domain.ErrValidation)
	ErrNoSessionsGenerated = errors.New("no study sessions could be generated")
)

// Request describes the plan to generate.
type Request struct {
	Weeks []domain.CurriculumWeek
	// StartDate is moved forward to Today when it lies in the past.
	StartDate          time.Time
	EndDate            time.Time
	DailyTargetMinutes int
	IncludeWeekends    bool
	LearningStyle      domain.LearningStyle
	// Today is the reference date for rejecting past end dates.
	Today time.Time
	// IncludeFinalReview turns the last plan day into a final review when the
	// last week has at least three days.
	IncludeFinalReview bool
}

// WeekBlock is the run of consecutive study days assigned to one curriculum week.
type WeekBlock struct {
	Week domain.CurriculumWeek
	Days []time.Time
}

// Plan is a generated, not yet persisted, study plan.
type Plan struct {
	ID            uuid.UUID             `json:"id"`
	StartDate     time.Time             `json:"start_date"`
	EndDate       time.Time             `json:"end_date"`
	LearningStyle domain.LearningStyle  `json:"learning_style"`
	TotalSessions int                   `json:"total_sessions"`
	TotalMinutes  int                   `json:"total_minutes"`
	TotalHours    float64               `json:"total_hours"`
	WeekCount     int                   `json:"week_count"`
	Sessions      []domain.StudySession `json:"sessions"`
}

// Generator builds study plans. It is stateless and safe for concurrent use.
type Generator struct {
	params *Params
}

// NewGenerator creates a Generator. Nil params use the defaults.
func NewGenerator(params *Params) (*Generator, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan params: %w", err)
	}
	return &Generator{params: params}, nil
}

// Generate validates req and produces the plan. A valid request whose range
// holds no study days yields a plan with zero sessions; callers report that
// as ErrNoSessionsGenerated.
func (g *Generator) Generate(req Request) (*Plan, error) {
	start, err := g.validateRequest(req)
	if err != nil {
		return nil, err
	}

	days := AvailableDays(start, req.EndDate, req.IncludeWeekends)
	blocks := DistributeWeeks(req.Weeks, days)
	modes := g.ModesFor(req.LearningStyle)

	p := &Plan{
		ID:            uuid.New(),
		StartDate:     start,
		EndDate:       dateOf(req.EndDate),
		LearningStyle: req.LearningStyle,
		WeekCount:     len(blocks),
		Sessions:      []domain.StudySession{},
	}

	for _, block := range blocks {
		p.Sessions = append(p.Sessions, g.blockSessions(p.ID, block, modes, req.DailyTargetMinutes)...)
	}

	if req.IncludeFinalReview && len(blocks) > 0 && len(blocks[len(blocks)-1].Days) >= 3 {
		last := &p.Sessions[len(p.Sessions)-1]
		last.Role = domain.RoleFinalReview
		last.Mode = g.params.FinalReviewMode
		last.EstimatedMinutes = g.newMaterialMinutes(g.params.FinalReviewMode, req.DailyTargetMinutes)
	}

	for _, s := range p.Sessions {
		p.TotalMinutes += s.EstimatedMinutes
	}
	p.TotalSessions = len(p.Sessions)
	p.TotalHours = math.Round(float64(p.TotalMinutes)/60*10) / 10
	if len(p.Sessions) > 0 {
		p.StartDate = p.Sessions[0].ScheduledDate
		p.EndDate = p.Sessions[len(p.Sessions)-1].ScheduledDate
	}

	return p, nil
}

// validateRequest checks req and returns the effective start date. Ranges
// are checked before any days are enumerated.
func (g *Generator) validateRequest(req Request) (time.Time, error) {
	if len(req.Weeks) == 0 {
		return time.Time{}, ErrEmptyCurriculum
	}
	start, end := dateOf(req.StartDate), dateOf(req.EndDate)
	if end.Before(start) {
		return time.Time{}, ErrInvalidDateRange
	}
	now := req.Today
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if end.Before(dateOf(now.In(req.EndDate.Location()))) {
		return time.Time{}, ErrExamDatePassed
	}
	if today := dateOf(now.In(req.StartDate.Location())); start.Before(today) {
		start = today
	}
	if req.DailyTargetMinutes <= 0 {
		return time.Time{}, ErrInvalidDailyTarget
	}
	if span := calendarDays(start, end); span > g.params.MaxPlanDays {
		return time.Time{}, fmt.Errorf("%w: %d days exceeds the limit of %d", ErrPlanTooLong, span, g.params.MaxPlanDays)
	}
	return start, nil
}

// calendarDays counts the days from start to end inclusive.
func calendarDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// AvailableDays lists every calendar day from start to end inclusive,
// skipping Saturdays and Sundays unless includeWeekends is set.
func AvailableDays(start, end time.Time, includeWeekends bool) []time.Time {
	first, last := dateOf(start), dateOf(end)
	days := make([]time.Time, 0)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !includeWeekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		days = append(days, d)
	}
	return days
}

// DistributeWeeks assigns contiguous runs of days to weeks in curriculum order.
// Each week gets max(1, len(days)/len(weeks)) days and any remainder goes to
// the final week's block. Weeks beyond the available days get no block.
func DistributeWeeks(weeks []domain.CurriculumWeek, days []time.Time) []WeekBlock {
	if len(weeks) == 0 || len(days) == 0 {
		return []WeekBlock{}
	}

	perWeek := len(days) / len(weeks)
	if perWeek < 1 {
		perWeek = 1
	}

	blocks := make([]WeekBlock, 0, len(weeks))
	cursor := 0
	for i, week := range weeks {
		if cursor >= len(days) {
			break
		}
		end := cursor + perWeek
		if i == len(weeks)-1 || end > len(days) {
			end = len(days)
		}
		blocks = append(blocks, WeekBlock{Week: week, Days: days[cursor:end]})
		cursor = end
	}
	return blocks
}

// ModesFor returns the ranked activity modes for a learning style.
func (g *Generator) ModesFor(style domain.LearningStyle) []domain.ActivityMode {
	if modes, ok := g.params.StyleModes[style]; ok && len(modes) > 0 {
		return modes
	}
	return g.params.DefaultModes
}

func (g *Generator) blockSessions(
	planID uuid.UUID,
	block WeekBlock,
	modes []domain.ActivityMode,
	daily int,
) []domain.StudySession {
	sessions := make([]domain.StudySession, 0, len(block.Days))
	n := len(block.Days)

	for pos, day := range block.Days {
		s := domain.StudySession{
			ID:            uuid.New(),
			PlanID:        planID,
			ScheduledDate: day,
			Topic:         block.Week.Topic,
			WeekNumber:    block.Week.WeekNumber,
			Status:        domain.SessionPending,
		}

		switch {
		case pos == 0:
			s.Role = domain.RoleNew
			s.Mode = newMaterialMode(modes)
			s.EstimatedMinutes = g.newMaterialMinutes(s.Mode, daily)
		case pos == n-1:
			s.Role = domain.RoleAssessment
			s.Mode = g.params.AssessmentMode
			s.EstimatedMinutes = g.params.ModeDurations[g.params.AssessmentMode]
		default:
			s.Role = domain.RoleReview
			s.Mode = modes[(pos-1)%len(modes)]
			s.EstimatedMinutes = min(daily, g.params.ModeDurations[s.Mode])
		}

		sessions = append(sessions, s)
	}
	return sessions
}

func (g *Generator) newMaterialMinutes(mode domain.ActivityMode, daily int) int {
	return min(daily, g.params.NewMaterialMultiplier*g.params.ModeDurations[mode])
}

func newMaterialMode(modes []domain.ActivityMode) domain.ActivityMode {
	for _, m := range modes {
		if m == domain.ModeReading {
			return m
		}
	}
	return modes[0]
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
