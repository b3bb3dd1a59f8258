package clock

import "time"

// Clock supplies the current timestamp and the local calendar date. Services
// depend on this interface so the attendance state machine is testable with
// a frozen time.
type Clock interface {
	Now() time.Time
	Today() time.Time
	DayOf(t time.Time) DayRange
}

// DayRange is the inclusive window covering one full local calendar day,
// 00:00:00.000000000 through 23:59:59.999999999. Every "records for date X"
// query must use these bounds; comparing bare timestamps against a date
// column is how day-boundary records get lost around midnight.
type DayRange struct {
	Date  time.Time // midnight, local
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the day.
func (d DayRange) Contains(t time.Time) bool {
	return !t.Before(d.Start) && !t.After(d.End)
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock pinned to the given IANA timezone.
// An unknown timezone falls back to UTC.
func NewSystemClock(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *systemClock) Today() time.Time {
	return c.DayOf(c.Now()).Date
}

func (c *systemClock) DayOf(t time.Time) DayRange {
	return DayRangeIn(t, c.loc)
}

// DayRangeIn computes the local-day window of t in loc.
func DayRangeIn(t time.Time, loc *time.Location) DayRange {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayRange{
		Date:  start,
		Start: start,
		End:   start.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

// Fixed is a Clock frozen at a point in time, for tests.
type Fixed struct {
	Current time.Time
}

func (f *Fixed) Now() time.Time   { return f.Current }
func (f *Fixed) Today() time.Time { return f.DayOf(f.Current).Date }
func (f *Fixed) DayOf(t time.Time) DayRange {
	return DayRangeIn(t, f.Current.Location())
}

// Advance moves the fixed clock forward.
func (f *Fixed) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
