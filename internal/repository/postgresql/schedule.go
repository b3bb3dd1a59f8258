package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shiftwise/attendance-backend-go/internal/domain/schedule"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/database"
)

type shiftProvider struct {
	db           *database.DB
	defaultGrace int
}

// NewShiftProvider builds the work-schedule lookup. defaultGraceMinutes
// applies when a schedule row leaves grace_minutes null.
func NewShiftProvider(db *database.DB, defaultGraceMinutes int) schedule.ShiftProvider {
	return &shiftProvider{db: db, defaultGrace: defaultGraceMinutes}
}

// ExpectedShift implements schedule.ShiftProvider. Shifts are configured per
// employee per weekday; clock times are stored as "15:04" strings and are
// composed onto the requested date in its own location.
func (s *shiftProvider) ExpectedShift(ctx context.Context, employeeID string, date time.Time) (*schedule.Shift, error) {
	q := database.GetQuerier(ctx, s.db)

	query := `
		SELECT start_time, end_time, grace_minutes
		FROM work_schedules
		WHERE employee_id = $1
		  AND weekday = $2
	`

	var startStr, endStr string
	var grace *int
	err := q.QueryRow(ctx, query, employeeID, int(date.Weekday())).Scan(&startStr, &endStr, &grace)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work schedule: %w", err)
	}

	graceMinutes := s.defaultGrace
	if grace != nil {
		graceMinutes = *grace
	}

	start, err := clockTimeOn(date, startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule start_time %q: %w", startStr, err)
	}
	end, err := clockTimeOn(date, endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule end_time %q: %w", endStr, err)
	}

	return &schedule.Shift{
		Start:        start,
		End:          end,
		GraceMinutes: graceMinutes,
	}, nil
}

// clockTimeOn places an "HH:MM" clock time onto the given date.
func clockTimeOn(date time.Time, clockStr string) (time.Time, error) {
	t, err := time.Parse("15:04", clockStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
