package schedule

import (
	"context"
	"time"
)

// Shift is the expected working window for one employee on one day. Start
// and End carry the scheduled clock times on the record's date, in local
// time. GraceMinutes is the tolerance before lateness starts counting.
type Shift struct {
	Start        time.Time
	End          time.Time
	GraceMinutes int
}

// Duration returns the expected shift length.
func (s Shift) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// ExpectedMinutes returns the expected shift length in whole minutes.
func (s Shift) ExpectedMinutes() int {
	return int(s.Duration().Minutes())
}

// ShiftProvider supplies the expected shift for an employee on a date.
// A nil shift with a nil error means no shift is configured for that day;
// lateness and early-exit metrics are then skipped.
type ShiftProvider interface {
	ExpectedShift(ctx context.Context, employeeID string, date time.Time) (*Shift, error)
}
