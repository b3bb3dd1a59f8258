package attendance

import (
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/schedule"
)

// metricsContext carries the external facts one recomputation needs. It is
// assembled once per operation so the calculation itself stays pure and
// deterministic.
type metricsContext struct {
	Shift          *schedule.Shift
	IsHoliday      bool
	OnLeave        bool
	Now            time.Time
	FullDayMinutes int
	HalfDayMinutes int
}

// thresholds returns the full-day and half-day worked-minute thresholds.
// With a configured shift they derive from its duration; otherwise the
// configured defaults apply.
func (mc metricsContext) thresholds() (full int, half int) {
	if mc.Shift != nil {
		full = mc.Shift.ExpectedMinutes()
		return full, full / 2
	}
	return mc.FullDayMinutes, mc.HalfDayMinutes
}

// breakDurationMinutes returns the closed break's length in whole minutes.
func breakDurationMinutes(b attendance.Break) int {
	if b.EndTime == nil {
		return 0
	}
	mins := int(b.EndTime.Sub(b.StartTime).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

// sessionWorkedMinutes derives a session's worked minutes: check-out minus
// check-in, less its break time. An open session contributes zero.
func sessionWorkedMinutes(s attendance.Session) int {
	if s.CheckOut == nil {
		return 0
	}
	gross := int(s.CheckOut.Sub(s.CheckIn).Minutes())
	worked := gross - s.BreakMinutes()
	if worked < 0 {
		return 0
	}
	return worked
}

// recomputeMetrics rewrites every derived field of the day record from its
// session data and the metrics context. It is called synchronously after
// every mutation so derived fields are never stale.
func recomputeMetrics(rec *attendance.DayRecord, mc metricsContext) {
	totalWorked := 0
	totalBreaks := 0

	for i := range rec.Sessions {
		s := &rec.Sessions[i]
		for j := range s.Breaks {
			s.Breaks[j].DurationMinutes = breakDurationMinutes(s.Breaks[j])
		}
		s.WorkedMinutes = sessionWorkedMinutes(*s)
		totalWorked += s.WorkedMinutes
		totalBreaks += s.BreakMinutes()
	}

	rec.WorkedMinutes = totalWorked
	rec.BreakMinutes = totalBreaks
	rec.LateMinutes = lateMinutes(rec, mc.Shift)
	rec.EarlyExitMinutes = earlyExitMinutes(rec, mc.Shift)
	rec.OvertimeMinutes = overtimeMinutes(rec, mc)
	rec.Status = deriveStatus(rec, mc)
}

// lateMinutes measures how far past the grace limit the first check-in was.
// Zero when no shift is configured or no check-in exists.
func lateMinutes(rec *attendance.DayRecord, shift *schedule.Shift) int {
	if shift == nil {
		return 0
	}
	first := rec.FirstCheckIn()
	if first == nil {
		return 0
	}
	graceLimit := shift.Start.Add(time.Duration(shift.GraceMinutes) * time.Minute)
	if !first.After(graceLimit) {
		return 0
	}
	return int(first.Sub(graceLimit).Minutes())
}

// earlyExitMinutes measures how far before the shift end the day's closing
// check-out was. Zero while the day has no closing check-out.
func earlyExitMinutes(rec *attendance.DayRecord, shift *schedule.Shift) int {
	if shift == nil {
		return 0
	}
	last := rec.LastCheckOut()
	if last == nil {
		return 0
	}
	if !last.Before(shift.End) {
		return 0
	}
	return int(shift.End.Sub(*last).Minutes())
}

// overtimeMinutes is worked time beyond the expected day length.
func overtimeMinutes(rec *attendance.DayRecord, mc metricsContext) int {
	expected := mc.FullDayMinutes
	if mc.Shift != nil {
		expected = mc.Shift.ExpectedMinutes()
	}
	overtime := rec.WorkedMinutes - expected
	if overtime < 0 {
		return 0
	}
	return overtime
}

// deriveStatus resolves the day status from worked minutes and the external
// leave/holiday facts. Order matters: approved leave wins, then the empty
// record cases, then the thresholds.
func deriveStatus(rec *attendance.DayRecord, mc metricsContext) attendance.DayStatus {
	if mc.OnLeave {
		return attendance.StatusOnLeave
	}

	if len(rec.Sessions) == 0 {
		if mc.IsHoliday {
			return attendance.StatusHoliday
		}
		return attendance.StatusAbsent
	}

	// Any open session means the day is not yet accountable.
	if rec.ActiveSession() != nil {
		return attendance.StatusIncomplete
	}

	full, half := mc.thresholds()
	switch {
	case rec.WorkedMinutes >= full:
		return attendance.StatusPresent
	case rec.WorkedMinutes >= half:
		return attendance.StatusHalfDay
	default:
		// All sessions closed but under the half-day threshold; left for
		// finalization or manual correction to resolve.
		return attendance.StatusIncomplete
	}
}
