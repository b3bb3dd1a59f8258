package attendance

import (
	"testing"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
)

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func atPtr(hour, min int) *time.Time {
	t := at(hour, min)
	return &t
}

func nineToFiveShift() *schedule.Shift {
	return &schedule.Shift{
		Start:        at(9, 0),
		End:          at(17, 0),
		GraceMinutes: 15,
	}
}

func shiftContext(shift *schedule.Shift) metricsContext {
	return metricsContext{
		Shift:          shift,
		Now:            at(19, 0),
		FullDayMinutes: testConfig.FullDayMinutes,
		HalfDayMinutes: testConfig.HalfDayMinutes,
	}
}

func closedSession(checkInH, checkInM, checkOutH, checkOutM int) attendance.Session {
	return attendance.Session{
		ID:       "s1",
		CheckIn:  at(checkInH, checkInM),
		CheckOut: atPtr(checkOutH, checkOutM),
		Status:   attendance.SessionCompleted,
	}
}

// Two sessions totalling 510 minutes against an 8-hour shift: a present day
// with 30 minutes of overtime.
func TestRecomputeMetrics_FullDayWithOvertime(t *testing.T) {
	rec := attendance.DayRecord{
		Date: testDay,
		Sessions: []attendance.Session{
			closedSession(9, 0, 13, 0),
			closedSession(14, 0, 18, 30),
		},
	}

	recomputeMetrics(&rec, shiftContext(nineToFiveShift()))

	assert.Equal(t, 510, rec.WorkedMinutes)
	assert.Equal(t, 0, rec.BreakMinutes)
	assert.Equal(t, 30, rec.OvertimeMinutes)
	assert.Equal(t, 0, rec.LateMinutes)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestRecomputeMetrics_BreaksReduceWorkedTime(t *testing.T) {
	session := closedSession(9, 0, 17, 0)
	session.Breaks = []attendance.Break{
		{ID: "b1", StartTime: at(12, 0), EndTime: atPtr(12, 45)},
		{ID: "b2", StartTime: at(15, 0), EndTime: atPtr(15, 15)},
	}
	rec := attendance.DayRecord{Date: testDay, Sessions: []attendance.Session{session}}

	recomputeMetrics(&rec, shiftContext(nineToFiveShift()))

	assert.Equal(t, 420, rec.WorkedMinutes)
	assert.Equal(t, 60, rec.BreakMinutes)
	assert.Equal(t, 45, rec.Sessions[0].Breaks[0].DurationMinutes)
	assert.Equal(t, 15, rec.Sessions[0].Breaks[1].DurationMinutes)
	// 420 of 480 expected, above the 240 half-day line
	assert.Equal(t, attendance.StatusHalfDay, rec.Status)
}

// An open break contributes nothing until it closes.
func TestRecomputeMetrics_OpenBreakCountsZero(t *testing.T) {
	session := attendance.Session{
		ID:      "s1",
		CheckIn: at(9, 0),
		Status:  attendance.SessionActive,
		Breaks: []attendance.Break{
			{ID: "b1", StartTime: at(12, 0)},
		},
	}
	rec := attendance.DayRecord{Date: testDay, Sessions: []attendance.Session{session}}

	recomputeMetrics(&rec, shiftContext(nineToFiveShift()))

	assert.Equal(t, 0, rec.WorkedMinutes)
	assert.Equal(t, 0, rec.BreakMinutes)
	assert.Equal(t, attendance.StatusIncomplete, rec.Status)
}

func TestLateMinutes_GraceWindow(t *testing.T) {
	shift := nineToFiveShift()

	onTime := attendance.DayRecord{Sessions: []attendance.Session{closedSession(9, 10, 17, 0)}}
	assert.Equal(t, 0, lateMinutes(&onTime, shift))

	late := attendance.DayRecord{Sessions: []attendance.Session{closedSession(9, 20, 17, 0)}}
	assert.Equal(t, 5, lateMinutes(&late, shift))

	noShift := attendance.DayRecord{Sessions: []attendance.Session{closedSession(10, 0, 17, 0)}}
	assert.Equal(t, 0, lateMinutes(&noShift, nil))
}

func TestEarlyExitMinutes(t *testing.T) {
	shift := nineToFiveShift()

	early := attendance.DayRecord{Sessions: []attendance.Session{closedSession(9, 0, 16, 30)}}
	assert.Equal(t, 30, earlyExitMinutes(&early, shift))

	onTime := attendance.DayRecord{Sessions: []attendance.Session{closedSession(9, 0, 17, 0)}}
	assert.Equal(t, 0, earlyExitMinutes(&onTime, shift))

	// An open session means no closing check-out yet
	open := attendance.DayRecord{Sessions: []attendance.Session{
		{ID: "s1", CheckIn: at(9, 0), Status: attendance.SessionActive},
	}}
	assert.Equal(t, 0, earlyExitMinutes(&open, shift))
}

func TestThresholds_ShiftDerivedVersusDefaults(t *testing.T) {
	withShift := shiftContext(nineToFiveShift())
	full, half := withShift.thresholds()
	assert.Equal(t, 480, full)
	assert.Equal(t, 240, half)

	sixHour := shiftContext(&schedule.Shift{Start: at(9, 0), End: at(15, 0)})
	full, half = sixHour.thresholds()
	assert.Equal(t, 360, full)
	assert.Equal(t, 180, half)

	noShift := shiftContext(nil)
	full, half = noShift.thresholds()
	assert.Equal(t, testConfig.FullDayMinutes, full)
	assert.Equal(t, testConfig.HalfDayMinutes, half)
}

func TestDeriveStatus_Order(t *testing.T) {
	// Approved leave wins over everything, sessions included
	onLeave := attendance.DayRecord{Sessions: []attendance.Session{closedSession(9, 0, 17, 0)}}
	mc := shiftContext(nineToFiveShift())
	mc.OnLeave = true
	assert.Equal(t, attendance.StatusOnLeave, deriveStatus(&onLeave, mc))

	// Empty day on a holiday
	empty := attendance.DayRecord{}
	mc = shiftContext(nil)
	mc.IsHoliday = true
	assert.Equal(t, attendance.StatusHoliday, deriveStatus(&empty, mc))

	// Empty day on a working day
	assert.Equal(t, attendance.StatusAbsent, deriveStatus(&empty, shiftContext(nil)))

	// Closed sessions under the half-day line stay incomplete
	short := attendance.DayRecord{
		WorkedMinutes: 90,
		Sessions:      []attendance.Session{closedSession(9, 0, 10, 30)},
	}
	assert.Equal(t, attendance.StatusIncomplete, deriveStatus(&short, shiftContext(nineToFiveShift())))
}

func TestOvertimeMinutes_ClampedAtZero(t *testing.T) {
	rec := attendance.DayRecord{WorkedMinutes: 400}
	assert.Equal(t, 0, overtimeMinutes(&rec, shiftContext(nineToFiveShift())))

	rec.WorkedMinutes = 500
	assert.Equal(t, 20, overtimeMinutes(&rec, shiftContext(nineToFiveShift())))
}
