package leave

import (
	"context"
	"time"
)

// Oracle answers the two questions status derivation needs from the leave
// and holiday subsystems. Both are owned elsewhere; the engine only reads.
type Oracle interface {
	IsOnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}
