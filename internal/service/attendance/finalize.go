package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/config"
	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
	"github.com/shiftwise/attendance-backend-go/internal/domain/employee"
	"github.com/shiftwise/attendance-backend-go/internal/domain/leave"
	"github.com/shiftwise/attendance-backend-go/internal/domain/schedule"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/cron"
)

const systemActor = "system"

// Finalizer is the background counterpart of the interactive service: it
// closes sessions employees forgot to end and writes records for days that
// never saw a check-in.
type Finalizer struct {
	records   attendance.DayRecordRepository
	employees employee.Directory
	shifts    schedule.ShiftProvider
	leaves    leave.Oracle
	auditor   audit.Emitter
	clk       clock.Clock
	cfg       config.AttendanceConfig
}

func NewFinalizer(
	records attendance.DayRecordRepository,
	employees employee.Directory,
	shifts schedule.ShiftProvider,
	leaves leave.Oracle,
	auditor audit.Emitter,
	clk clock.Clock,
	cfg config.AttendanceConfig,
) *Finalizer {
	return &Finalizer{
		records:   records,
		employees: employees,
		shifts:    shifts,
		leaves:    leaves,
		auditor:   auditor,
		clk:       clk,
		cfg:       cfg,
	}
}

// RegisterJobs wires the finalization jobs into the scheduler.
func (f *Finalizer) RegisterJobs(scheduler *cron.Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", 1*time.Hour, f.AutoCloseStaleSessions)
	scheduler.AddJob("record_missing_days", 1*time.Hour, f.RecordMissingDays)
}

// AutoCloseStaleSessions closes sessions that were still open when their
// calendar day ended. The check-out lands on the scheduled shift end when one
// exists and is after the check-in; otherwise the session closes at its own
// check-in and contributes zero worked time. Either way the day ends up
// incomplete and pending review.
func (f *Finalizer) AutoCloseStaleSessions(ctx context.Context) error {
	todayStart := f.clk.DayOf(f.clk.Now()).Start

	stale, err := f.records.ListOpenSessionsBefore(ctx, todayStart)
	if err != nil {
		return fmt.Errorf("failed to list stale open sessions: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	closedCount := 0
	for _, candidate := range stale {
		if err := f.closeStaleRecord(ctx, candidate.ID); err != nil {
			slog.Error("Failed to auto-close stale session",
				"record_id", candidate.ID,
				"employee_id", candidate.EmployeeID,
				"error", err)
			continue
		}
		closedCount++
	}

	slog.Info("Auto-closed stale sessions", "count", closedCount)
	return nil
}

func (f *Finalizer) closeStaleRecord(ctx context.Context, recordID string) error {
	var result attendance.DayRecord

	err := f.records.InTx(ctx, func(ctx context.Context) error {
		rec, err := f.records.GetByID(ctx, recordID)
		if err != nil {
			return err
		}

		session := rec.ActiveSession()
		if session == nil {
			// Closed by the employee between listing and locking.
			return nil
		}

		shift, err := f.shifts.ExpectedShift(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			slog.Warn("failed to resolve shift for auto-close", "employee_id", rec.EmployeeID, "error", err)
			shift = nil
		}

		closeAt := session.CheckIn
		if shift != nil && shift.End.After(session.CheckIn) {
			closeAt = shift.End
		}

		if open := session.OpenBreak(); open != nil {
			open.EndTime = &closeAt
		}
		session.CheckOut = &closeAt
		session.Status = attendance.SessionCompleted

		recomputeMetrics(&rec, f.metricsContextFor(ctx, rec.EmployeeID, rec.Date, shift))

		reason := "auto-closed: no check-out recorded"
		rec.Status = attendance.StatusIncomplete
		rec.StatusReason = &reason
		rec.ApprovalStatus = attendance.ApprovalPending
		rec.Source = attendance.SourceSystem
		rec.UpdatedBy = systemActor

		if err := f.records.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save auto-closed record: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil || result.ID == "" {
		return err
	}

	f.emitFinalizeAudit(ctx, result, map[string]interface{}{
		"reason":         "stale_session_auto_closed",
		"worked_minutes": result.WorkedMinutes,
	})

	return nil
}

// RecordMissingDays writes a record for every active employee who has none
// for the previous day, so monthly reporting never has silent gaps.
func (f *Finalizer) RecordMissingDays(ctx context.Context) error {
	yesterday := f.clk.DayOf(f.clk.Now().AddDate(0, 0, -1))

	ids, err := f.employees.ActiveEmployeeIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	createdCount := 0
	for _, employeeID := range ids {
		created, err := f.recordMissingDay(ctx, employeeID, yesterday)
		if err != nil {
			slog.Error("Failed to record missing day",
				"employee_id", employeeID,
				"date", yesterday.Date.Format("2006-01-02"),
				"error", err)
			continue
		}
		if created {
			createdCount++
		}
	}

	slog.Info("Recorded missing attendance days", "date", yesterday.Date.Format("2006-01-02"), "count", createdCount)
	return nil
}

func (f *Finalizer) recordMissingDay(ctx context.Context, employeeID string, day clock.DayRange) (bool, error) {
	var result attendance.DayRecord

	err := f.records.InTx(ctx, func(ctx context.Context) error {
		existing, err := f.records.GetByEmployeeAndDay(ctx, employeeID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		rec, err := f.records.FindOrCreate(ctx, employeeID, day, systemActor)
		if err != nil {
			return err
		}

		recomputeMetrics(&rec, f.metricsContextFor(ctx, employeeID, day.Date, nil))

		rec.Source = attendance.SourceSystem
		rec.UpdatedBy = systemActor

		if err := f.records.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save generated record: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil || result.ID == "" {
		return false, err
	}

	f.emitFinalizeAudit(ctx, result, map[string]interface{}{
		"reason": "missing_day_recorded",
		"status": string(result.Status),
	})

	return true, nil
}

func (f *Finalizer) metricsContextFor(ctx context.Context, employeeID string, date time.Time, shift *schedule.Shift) metricsContext {
	mc := metricsContext{
		Shift:          shift,
		Now:            f.clk.Now(),
		FullDayMinutes: f.cfg.FullDayMinutes,
		HalfDayMinutes: f.cfg.HalfDayMinutes,
	}

	onLeave, err := f.leaves.IsOnApprovedLeave(ctx, employeeID, date)
	if err != nil {
		slog.Warn("failed to check approved leave", "employee_id", employeeID, "error", err)
	} else {
		mc.OnLeave = onLeave
	}

	holiday, err := f.leaves.IsHoliday(ctx, date)
	if err != nil {
		slog.Warn("failed to check holiday calendar", "error", err)
	} else {
		mc.IsHoliday = holiday
	}

	return mc
}

func (f *Finalizer) emitFinalizeAudit(ctx context.Context, rec attendance.DayRecord, meta map[string]interface{}) {
	if f.auditor == nil {
		return
	}
	meta["employee_id"] = rec.EmployeeID
	meta["date"] = rec.Date.Format("2006-01-02")

	err := f.auditor.LogAction(ctx, audit.Entry{
		Action:     audit.ActionFinalize,
		Severity:   audit.SeverityWarning,
		EntityType: "day_record",
		EntityID:   rec.ID,
		ActorID:    systemActor,
		ActorRole:  systemActor,
		Meta:       meta,
	})
	if err != nil {
		slog.Error("failed to write audit entry", "action", audit.ActionFinalize, "entity_id", rec.ID, "error", err)
	}
}
