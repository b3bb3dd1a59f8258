package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftwise/attendance-backend-go/internal/config"
	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
	"github.com/shiftwise/attendance-backend-go/internal/domain/leave"
	"github.com/shiftwise/attendance-backend-go/internal/domain/schedule"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
)

type AttendanceServiceImpl struct {
	records attendance.DayRecordRepository
	shifts  schedule.ShiftProvider
	leaves  leave.Oracle
	auditor audit.Emitter
	clk     clock.Clock
	cfg     config.AttendanceConfig
}

func NewAttendanceService(
	records attendance.DayRecordRepository,
	shifts schedule.ShiftProvider,
	leaves leave.Oracle,
	auditor audit.Emitter,
	clk clock.Clock,
	cfg config.AttendanceConfig,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		records: records,
		shifts:  shifts,
		leaves:  leaves,
		auditor: auditor,
		clk:     clk,
		cfg:     cfg,
	}
}

// actorFromContext extracts the authenticated employee's identity from the
// JWT claims carried in ctx.
func actorFromContext(ctx context.Context) (employeeID string, role string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	role, _ = claims["role"].(string)

	return employeeID, role, nil
}

// dayContext gathers the external facts metrics derivation needs for one
// employee/day. Oracle misses degrade to false rather than failing the
// primary operation.
func (a *AttendanceServiceImpl) dayContext(ctx context.Context, employeeID string, date time.Time) metricsContext {
	mc := metricsContext{
		Now:            a.clk.Now(),
		FullDayMinutes: a.cfg.FullDayMinutes,
		HalfDayMinutes: a.cfg.HalfDayMinutes,
	}

	shift, err := a.shifts.ExpectedShift(ctx, employeeID, date)
	if err != nil {
		slog.Warn("failed to resolve expected shift", "employee_id", employeeID, "date", date.Format("2006-01-02"), "error", err)
	} else {
		mc.Shift = shift
	}

	onLeave, err := a.leaves.IsOnApprovedLeave(ctx, employeeID, date)
	if err != nil {
		slog.Warn("failed to check approved leave", "employee_id", employeeID, "error", err)
	} else {
		mc.OnLeave = onLeave
	}

	holiday, err := a.leaves.IsHoliday(ctx, date)
	if err != nil {
		slog.Warn("failed to check holiday calendar", "error", err)
	} else {
		mc.IsHoliday = holiday
	}

	return mc
}

// emitAudit records an audit entry. Audit failures are logged and swallowed
// so they never mask the primary result.
func (a *AttendanceServiceImpl) emitAudit(ctx context.Context, entry audit.Entry) {
	if a.auditor == nil {
		return
	}
	if entry.Severity == "" {
		entry.Severity = audit.SeverityInfo
	}
	if entry.EntityType == "" {
		entry.EntityType = "day_record"
	}
	if err := a.auditor.LogAction(ctx, entry); err != nil {
		slog.Error("failed to write audit entry", "action", entry.Action, "entity_id", entry.EntityID, "error", err)
	}
}

// timePtrToString safely converts a *time.Time to an RFC3339 string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func mapBreakToResponse(b attendance.Break) attendance.BreakResponse {
	return attendance.BreakResponse{
		ID:              b.ID,
		StartTime:       b.StartTime.Format(time.RFC3339),
		EndTime:         timePtrToString(b.EndTime),
		DurationMinutes: b.DurationMinutes,
		BreakType:       b.BreakType,
	}
}

func mapSessionToResponse(s attendance.Session) attendance.SessionResponse {
	breaks := make([]attendance.BreakResponse, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breaks = append(breaks, mapBreakToResponse(b))
	}

	return attendance.SessionResponse{
		ID:              s.ID,
		CheckIn:         s.CheckIn.Format(time.RFC3339),
		CheckOut:        timePtrToString(s.CheckOut),
		WorkLocation:    string(s.WorkLocation),
		LocationDetails: s.LocationDetails,
		Breaks:          breaks,
		WorkedMinutes:   s.WorkedMinutes,
		Status:          string(s.Status),
	}
}

// mapRecordToResponse converts a DayRecord entity to its response shape.
func mapRecordToResponse(rec attendance.DayRecord) attendance.DayRecordResponse {
	sessions := make([]attendance.SessionResponse, 0, len(rec.Sessions))
	for _, s := range rec.Sessions {
		sessions = append(sessions, mapSessionToResponse(s))
	}

	return attendance.DayRecordResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		Date:             rec.Date.Format("2006-01-02"),
		Status:           string(rec.Status),
		Sessions:         sessions,
		WorkedMinutes:    rec.WorkedMinutes,
		BreakMinutes:     rec.BreakMinutes,
		OvertimeMinutes:  rec.OvertimeMinutes,
		LateMinutes:      rec.LateMinutes,
		EarlyExitMinutes: rec.EarlyExitMinutes,
		ApprovalStatus:   string(rec.ApprovalStatus),
		StatusReason:     rec.StatusReason,
		Source:           string(rec.Source),
		Remarks:          rec.Remarks,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        rec.UpdatedAt.Format(time.RFC3339),
	}
}
