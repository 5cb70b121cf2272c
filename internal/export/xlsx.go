// Package export renders generated study plans as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/synaptic/study-engine/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	SessionsSheet = "Sessions"
	SummarySheet  = "Summary"
)

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var sessionHeader = []any{"Date", "Weekday", "Week", "Topic", "Role", "Activity", "Minutes", "Status"}

// WritePlanXLSX writes p as a workbook with one row per session and a summary sheet.
func WritePlanXLSX(w io.Writer, p *domain.StudyPlan) error {
	if p == nil {
		return fmt.Errorf("plan cannot be nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SessionsSheet)
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := writeSessions(f, p.Sessions); err != nil {
		return err
	}
	if err := writeSummary(f, p); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSessions(f *excelize.File, sessions []domain.StudySession) error {
	if err := f.SetSheetRow(SessionsSheet, "A1", &sessionHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SessionsSheet, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range sessions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.ScheduledDate.Format(time.DateOnly),
			s.ScheduledDate.Weekday().String(),
			s.WeekNumber,
			s.Topic,
			string(s.Role),
			string(s.Mode),
			s.EstimatedMinutes,
			string(s.Status),
		}
		if err := f.SetSheetRow(SessionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write session row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SessionsSheet, "A", "B", 12); err != nil {
		return err
	}
	return f.SetColWidth(SessionsSheet, "D", "F", 20)
}

func writeSummary(f *excelize.File, p *domain.StudyPlan) error {
	minutesByMode := make(map[domain.ActivityMode]int)
	var modes []domain.ActivityMode
	for _, s := range p.Sessions {
		if _, ok := minutesByMode[s.Mode]; !ok {
			modes = append(modes, s.Mode)
		}
		minutesByMode[s.Mode] += s.EstimatedMinutes
	}

	rows := [][]any{
		{"Plan", p.ID.String()},
		{"Start date", p.StartDate.Format(time.DateOnly)},
		{"End date", p.EndDate.Format(time.DateOnly)},
		{"Learning style", styleLabel(p.LearningStyle)},
		{"Daily target (minutes)", p.DailyTarget},
		{"Weeks", p.WeekCount},
		{"Sessions", p.TotalSessions},
		{"Total hours", p.TotalHours},
		{},
		{"Activity", "Minutes"},
	}
	for _, m := range modes {
		rows = append(rows, []any{string(m), minutesByMode[m]})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 24)
}

func styleLabel(s domain.LearningStyle) string {
	if s == "" {
		return "default"
	}
	return string(s)
}
