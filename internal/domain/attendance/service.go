package attendance

import (
	"context"
)

// AttendanceService defines the operations exposed to the HTTP layer. Every
// mutating call recomputes derived metrics before persisting and emits an
// audit entry; audit failures never fail the call.
type AttendanceService interface {
	// StartSession opens a new work session for today. Fails when a session
	// is already active.
	StartSession(ctx context.Context, req StartSessionRequest) (DayRecordResponse, error)

	// EndSession closes the active session and recomputes the day's metrics.
	EndSession(ctx context.Context, req EndSessionRequest) (DayRecordResponse, error)

	// StartBreak opens a break within the active session.
	StartBreak(ctx context.Context, req StartBreakRequest) (DayRecordResponse, error)

	// EndBreak closes the open break and recomputes totals.
	EndBreak(ctx context.Context, req EndBreakRequest) (DayRecordResponse, error)

	// CheckIn is the legacy single-session entry point. It maps onto
	// StartSession but enforces one session per day.
	CheckIn(ctx context.Context, req CheckInRequest) (DayRecordResponse, error)

	// CheckOut is the legacy counterpart of CheckIn.
	CheckOut(ctx context.Context, req CheckOutRequest) (DayRecordResponse, error)

	// ApplyCorrection applies an administrator patch to a day record and
	// returns the updated record with a before/after diff.
	ApplyCorrection(ctx context.Context, req CorrectionRequest) (CorrectionResponse, error)

	// ApproveRecord marks a record approved.
	ApproveRecord(ctx context.Context, req ApproveRecordRequest) (DayRecordResponse, error)

	// RejectRecord marks a record rejected with a reason.
	RejectRecord(ctx context.Context, req RejectRecordRequest) (DayRecordResponse, error)

	// GetRecord retrieves a single day record by ID.
	GetRecord(ctx context.Context, id string) (DayRecordResponse, error)

	// ListRecords retrieves records with filters (admin).
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// GetMyRecords retrieves records for the authenticated employee.
	GetMyRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// MonthlySummary aggregates one employee's month of records.
	MonthlySummary(ctx context.Context, req SummaryRequest) (MonthlySummaryResponse, error)
}
