package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/domain/leave"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/database"
)

type leaveOracle struct {
	db *database.DB
}

func NewLeaveOracle(db *database.DB) leave.Oracle {
	return &leaveOracle{db: db}
}

// IsOnApprovedLeave implements leave.Oracle.
func (l *leaveOracle) IsOnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := database.GetQuerier(ctx, l.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM leave_requests
			WHERE employee_id = $1
			  AND status = 'approved'
			  AND start_date <= $2
			  AND end_date >= $2
		)
	`

	var onLeave bool
	if err := q.QueryRow(ctx, query, employeeID, date).Scan(&onLeave); err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", err)
	}

	return onLeave, nil
}

// IsHoliday implements leave.Oracle.
func (l *leaveOracle) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	q := database.GetQuerier(ctx, l.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM holidays
			WHERE date = $1
		)
	`

	var holiday bool
	if err := q.QueryRow(ctx, query, date).Scan(&holiday); err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}

	return holiday, nil
}
