package attendance

import (
	"github.com/shiftwise/attendance-backend-go/internal/pkg/patch"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// SESSION TRACKER DTOs
// ========================================

// ActorMeta carries request-level actor context into audit entries. The
// handler fills it from the connection; identity comes from JWT claims.
type ActorMeta struct {
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type StartSessionRequest struct {
	WorkLocation    string  `json:"work_location"`
	LocationDetails *string `json:"location_details,omitempty"`
	Actor           ActorMeta
}

func (r *StartSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkLocation) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_location",
			Message: "work_location is required",
		})
	} else if !validator.IsInSlice(r.WorkLocation, ValidWorkLocations) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_location",
			Message: "work_location must be one of: office, wfh, client_site",
		})
	}

	if r.WorkLocation == string(LocationClientSite) {
		if r.LocationDetails == nil || validator.IsEmpty(*r.LocationDetails) {
			errs = append(errs, validator.ValidationError{
				Field:   "location_details",
				Message: "location_details is required when working from a client site",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndSessionRequest struct {
	Actor ActorMeta
}

type StartBreakRequest struct {
	BreakType *string `json:"break_type,omitempty"`
	Actor     ActorMeta
}

type EndBreakRequest struct {
	Actor ActorMeta
}

// CheckInRequest is the legacy single-session check-in payload.
type CheckInRequest struct {
	WorkLocation    string  `json:"work_location"`
	LocationDetails *string `json:"location_details,omitempty"`
	Actor           ActorMeta
}

func (r *CheckInRequest) Validate() error {
	s := StartSessionRequest{WorkLocation: r.WorkLocation, LocationDetails: r.LocationDetails}
	return s.Validate()
}

// CheckOutRequest is the legacy single-session check-out payload.
type CheckOutRequest struct {
	Actor ActorMeta
}

// ========================================
// CORRECTION DTOs
// ========================================

// CorrectionRequest is an administrator patch over a day record. Fields
// absent from the payload are untouched; explicit nulls clear their target.
// Timestamps are ISO8601 strings.
type CorrectionRequest struct {
	ID              string               `json:"-"`
	CheckIn         patch.Field[string]  `json:"check_in"`
	CheckOut        patch.Field[string]  `json:"check_out"`
	Status          patch.Field[string]  `json:"status"`
	StatusReason    patch.Field[string]  `json:"status_reason"`
	BreakTime       patch.Field[int]     `json:"break_time"`
	OvertimeMinutes patch.Field[int]     `json:"overtime_minutes"`
	ApprovalStatus  patch.Field[string]  `json:"approval_status"`
	Remarks         patch.Field[string]  `json:"remarks"`
	Actor           ActorMeta
}

var validDayStatuses = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusHalfDay),
	string(StatusIncomplete),
	string(StatusOnLeave),
	string(StatusHoliday),
}

func (r *CorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "record id is required",
		})
	} else if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "record id must be a valid UUID",
		})
	}

	if v, ok := r.CheckIn.Value(); ok {
		if _, valid := validator.IsValidDateTime(v); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in",
				Message: "check_in must be an ISO8601 timestamp",
			})
		}
	}

	if v, ok := r.CheckOut.Value(); ok {
		if _, valid := validator.IsValidDateTime(v); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check_out must be an ISO8601 timestamp",
			})
		}
	}

	if v, ok := r.Status.Value(); ok {
		if !validator.IsInSlice(v, validDayStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: present, absent, half_day, incomplete, on_leave, holiday",
			})
		}
	}

	if v, ok := r.BreakTime.Value(); ok && v < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_time",
			Message: "break_time must not be negative",
		})
	}

	if v, ok := r.OvertimeMinutes.Value(); ok && v < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_minutes",
			Message: "overtime_minutes must not be negative",
		})
	}

	// approval_status is intentionally not validated here: unknown values
	// are dropped by the correction engine instead of rejecting the patch.

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ChangeRecord is one before/after entry of a correction diff. Values are
// normalized to strings (RFC3339 for timestamps); nil means unset.
type ChangeRecord struct {
	Field  string  `json:"field"`
	Before *string `json:"before"`
	After  *string `json:"after"`
}

type ApproveRecordRequest struct {
	ID    string `json:"-"`
	Actor ActorMeta
}

type RejectRecordRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
	Actor  ActorMeta
}

func (r *RejectRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

type RecordFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, status, worked_minutes
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}

	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Status != nil && *f.Status != "" {
		if !validator.IsInSlice(*f.Status, validDayStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "invalid status filter",
			})
		}
	}

	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, []string{"date", "status", "worked_minutes"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: date, status, worked_minutes",
		})
	}

	if f.SortOrder != "" && !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_order",
			Message: "sort_order must be asc or desc",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SummaryRequest struct {
	EmployeeID string
	Year       int
	Month      int
}

func (r *SummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year is out of range",
		})
	}

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type BreakResponse struct {
	ID              string  `json:"id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	BreakType       *string `json:"break_type,omitempty"`
}

type SessionResponse struct {
	ID              string          `json:"id"`
	CheckIn         string          `json:"check_in"`
	CheckOut        *string         `json:"check_out,omitempty"`
	WorkLocation    string          `json:"work_location"`
	LocationDetails *string         `json:"location_details,omitempty"`
	Breaks          []BreakResponse `json:"breaks"`
	WorkedMinutes   int             `json:"worked_minutes"`
	Status          string          `json:"status"`
}

type DayRecordResponse struct {
	ID               string            `json:"id"`
	EmployeeID       string            `json:"employee_id"`
	Date             string            `json:"date"`
	Status           string            `json:"status"`
	Sessions         []SessionResponse `json:"sessions"`
	WorkedMinutes    int               `json:"worked_minutes"`
	BreakMinutes     int               `json:"break_minutes"`
	OvertimeMinutes  int               `json:"overtime_minutes"`
	LateMinutes      int               `json:"late_minutes"`
	EarlyExitMinutes int               `json:"early_exit_minutes"`
	ApprovalStatus   string            `json:"approval_status"`
	StatusReason     *string           `json:"status_reason,omitempty"`
	Source           string            `json:"source"`
	Remarks          []Remark          `json:"remarks,omitempty"`
	CreatedAt        string            `json:"created_at"`
	UpdatedAt        string            `json:"updated_at"`
}

type ListRecordsResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Showing    string              `json:"showing"`
	Records    []DayRecordResponse `json:"records"`
}

type CorrectionResponse struct {
	Record  DayRecordResponse `json:"record"`
	Changes []ChangeRecord    `json:"changes"`
}

type MonthlySummaryResponse struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`

	TotalDays             int `json:"total_days"`
	PresentDays           int `json:"present_days"`
	AbsentDays            int `json:"absent_days"`
	HalfDays              int `json:"half_days"`
	LeaveDays             int `json:"leave_days"`
	HolidayDays           int `json:"holiday_days"`
	TotalWorkMinutes      int `json:"total_work_minutes"`
	TotalOvertimeMinutes  int `json:"total_overtime_minutes"`
	LateDays              int `json:"late_days"`
	EarlyDepartures       int `json:"early_departures"`
	TotalLateMinutes      int `json:"total_late_minutes"`
	TotalEarlyExitMinutes int `json:"total_early_exit_minutes"`

	AttendancePercentage    float64 `json:"attendance_percentage"`
	AverageWorkHours        float64 `json:"average_work_hours"`
	AverageLateMinutes      float64 `json:"average_late_minutes"`
	AverageEarlyExitMinutes float64 `json:"average_early_exit_minutes"`
}
