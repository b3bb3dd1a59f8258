package attendance

import (
	"time"
)

// DayStatus is the derived status of a day record.
type DayStatus string

const (
	StatusPresent    DayStatus = "present"
	StatusAbsent     DayStatus = "absent"
	StatusHalfDay    DayStatus = "half_day"
	StatusIncomplete DayStatus = "incomplete"
	StatusOnLeave    DayStatus = "on_leave"
	StatusHoliday    DayStatus = "holiday"
)

// ApprovalStatus tracks administrator review of a day record.
type ApprovalStatus string

const (
	ApprovalAuto     ApprovalStatus = "auto"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ValidApprovalStatuses lists the accepted approval_status values.
var ValidApprovalStatuses = []string{
	string(ApprovalAuto),
	string(ApprovalPending),
	string(ApprovalApproved),
	string(ApprovalRejected),
}

// Source records which path last wrote the day record.
type Source string

const (
	SourceSelf   Source = "self"
	SourceManual Source = "manual"
	SourceSystem Source = "system"
)

// WorkLocation is where a session was worked from.
type WorkLocation string

const (
	LocationOffice     WorkLocation = "office"
	LocationWFH        WorkLocation = "wfh"
	LocationClientSite WorkLocation = "client_site"
)

// ValidWorkLocations lists the accepted work_location values.
var ValidWorkLocations = []string{
	string(LocationOffice),
	string(LocationWFH),
	string(LocationClientSite),
}

// SessionStatus is the lifecycle state of a work session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// DayRecord is the per-employee, per-calendar-date attendance aggregate.
// Exactly one exists per (employee, date); it is created lazily on the first
// check-in and owns its sessions exclusively.
type DayRecord struct {
	ID               string
	EmployeeID       string
	Date             time.Time // local midnight, no time-of-day component
	Status           DayStatus
	Sessions         []Session
	WorkedMinutes    int
	BreakMinutes     int
	OvertimeMinutes  int
	LateMinutes      int
	EarlyExitMinutes int
	ApprovalStatus   ApprovalStatus
	StatusReason     *string
	Source           Source
	Remarks          []Remark
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Session is one contiguous check-in-to-check-out work period within a day.
type Session struct {
	ID              string
	CheckIn         time.Time
	CheckOut        *time.Time
	WorkLocation    WorkLocation
	LocationDetails *string
	Breaks          []Break
	WorkedMinutes   int
	Status          SessionStatus
}

// Break is a pause within a session. EndTime is nil while the break is open.
type Break struct {
	ID              string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes int
	BreakType       *string
}

// Remark is one append-only note on a day record.
type Remark struct {
	Note    string    `json:"note"`
	AddedBy string    `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// ActiveSession returns the session with status=active, or nil. The day
// record invariant guarantees at most one.
func (r *DayRecord) ActiveSession() *Session {
	for i := range r.Sessions {
		if r.Sessions[i].Status == SessionActive {
			return &r.Sessions[i]
		}
	}
	return nil
}

// FirstCheckIn returns the earliest check-in of the day, or nil when no
// session exists.
func (r *DayRecord) FirstCheckIn() *time.Time {
	if len(r.Sessions) == 0 {
		return nil
	}
	first := r.Sessions[0].CheckIn
	for _, s := range r.Sessions[1:] {
		if s.CheckIn.Before(first) {
			first = s.CheckIn
		}
	}
	return &first
}

// LastCheckOut returns the latest check-out of the day, or nil when any
// session is still open or none exists.
func (r *DayRecord) LastCheckOut() *time.Time {
	var last *time.Time
	for i := range r.Sessions {
		if r.Sessions[i].CheckOut == nil {
			return nil
		}
		if last == nil || r.Sessions[i].CheckOut.After(*last) {
			last = r.Sessions[i].CheckOut
		}
	}
	return last
}

// AddRemark appends a note to the record's remarks history.
func (r *DayRecord) AddRemark(note, addedBy string, addedAt time.Time) {
	r.Remarks = append(r.Remarks, Remark{Note: note, AddedBy: addedBy, AddedAt: addedAt})
}

// OpenBreak returns the break without an end time, or nil.
func (s *Session) OpenBreak() *Break {
	for i := range s.Breaks {
		if s.Breaks[i].EndTime == nil {
			return &s.Breaks[i]
		}
	}
	return nil
}

// BreakMinutes sums the closed break durations of the session.
func (s *Session) BreakMinutes() int {
	total := 0
	for _, b := range s.Breaks {
		total += b.DurationMinutes
	}
	return total
}
