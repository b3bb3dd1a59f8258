package attendance

import "errors"

// Attendance domain errors
var (
	// Session state conflicts
	ErrAlreadyActiveSession = errors.New("a work session is already active for today")
	ErrNoActiveSession      = errors.New("no active work session found")
	ErrBreakAlreadyActive   = errors.New("a break is already in progress")
	ErrNoActiveBreak        = errors.New("no break is in progress")

	// Legacy single-session conflicts
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNoCheckInFound    = errors.New("no check-in found for today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")

	// General errors
	ErrRecordNotFound        = errors.New("attendance record not found")
	ErrCheckOutBeforeCheckIn = errors.New("check-out must be after check-in")
)
