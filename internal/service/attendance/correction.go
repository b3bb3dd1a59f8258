package attendance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/validator"
)

// correctionTrackedFields are the snapshot-diffed fields a correction may
// touch, in the order change records are reported. Remarks are append-only
// history, not a field value, so they diff separately.
var correctionTrackedFields = []string{
	"check_in",
	"check_out",
	"status",
	"status_reason",
	"break_time",
	"overtime_minutes",
	"approval_status",
}

func strPtr(s string) *string { return &s }

func intStrPtr(v int) *string { return strPtr(strconv.Itoa(v)) }

// correctionSnapshot captures the normalized values of every tracked field.
// Timestamps normalize to RFC3339 so "17:00" written two different ways
// never produces a phantom diff.
func correctionSnapshot(rec *attendance.DayRecord) map[string]*string {
	return map[string]*string{
		"check_in":         timePtrToString(rec.FirstCheckIn()),
		"check_out":        timePtrToString(rec.LastCheckOut()),
		"status":           strPtr(string(rec.Status)),
		"status_reason":    rec.StatusReason,
		"break_time":       intStrPtr(rec.BreakMinutes),
		"overtime_minutes": intStrPtr(rec.OvertimeMinutes),
		"approval_status":  strPtr(string(rec.ApprovalStatus)),
	}
}

// fieldRequested reports whether the patch names the field at all. Only
// requested fields are diffed; derived metrics recompute silently.
func fieldRequested(req attendance.CorrectionRequest, field string) bool {
	switch field {
	case "check_in":
		return req.CheckIn.Present()
	case "check_out":
		return req.CheckOut.Present()
	case "status":
		return req.Status.Present()
	case "status_reason":
		return req.StatusReason.Present()
	case "break_time":
		return req.BreakTime.Present()
	case "overtime_minutes":
		return req.OvertimeMinutes.Present()
	case "approval_status":
		return req.ApprovalStatus.Present()
	}
	return false
}

func diffSnapshots(req attendance.CorrectionRequest, before, after map[string]*string) []attendance.ChangeRecord {
	changes := make([]attendance.ChangeRecord, 0)
	for _, field := range correctionTrackedFields {
		if !fieldRequested(req, field) {
			continue
		}
		b, a := before[field], after[field]
		if b == nil && a == nil {
			continue
		}
		if b != nil && a != nil && *b == *a {
			continue
		}
		changes = append(changes, attendance.ChangeRecord{Field: field, Before: b, After: a})
	}
	return changes
}

// grossSessionMinutes sums check-out minus check-in over all closed
// sessions, before any break deduction.
func grossSessionMinutes(rec *attendance.DayRecord) int {
	total := 0
	for _, s := range rec.Sessions {
		if s.CheckOut == nil {
			continue
		}
		mins := int(s.CheckOut.Sub(s.CheckIn).Minutes())
		if mins > 0 {
			total += mins
		}
	}
	return total
}

// applyTimestampOverrides rewrites the record's session timestamps from the
// legacy single-session view: check_in targets the first session, check_out
// the last. An explicit null check_in removes the first session; a null
// check_out reopens the last one.
func (a *AttendanceServiceImpl) applyTimestampOverrides(rec *attendance.DayRecord, req attendance.CorrectionRequest) error {
	if req.CheckIn.Present() {
		if req.CheckIn.IsNull() {
			if len(rec.Sessions) > 0 {
				rec.Sessions = rec.Sessions[1:]
			}
		} else {
			v, _ := req.CheckIn.Value()
			checkIn, _ := validator.IsValidDateTime(v)
			if len(rec.Sessions) == 0 {
				rec.Sessions = append(rec.Sessions, attendance.Session{
					ID:           uuid.NewString(),
					CheckIn:      checkIn,
					WorkLocation: attendance.LocationOffice,
					Status:       attendance.SessionActive,
				})
			} else {
				rec.Sessions[0].CheckIn = checkIn
			}
		}
	}

	if req.CheckOut.Present() && len(rec.Sessions) > 0 {
		last := &rec.Sessions[len(rec.Sessions)-1]
		if req.CheckOut.IsNull() {
			last.CheckOut = nil
			last.Status = attendance.SessionActive
		} else {
			v, _ := req.CheckOut.Value()
			checkOut, _ := validator.IsValidDateTime(v)
			if !checkOut.After(last.CheckIn) {
				return attendance.ErrCheckOutBeforeCheckIn
			}
			last.CheckOut = &checkOut
			last.Status = attendance.SessionCompleted
		}
	}

	// A moved check-in must still precede its own session's check-out.
	if len(rec.Sessions) > 0 {
		first := rec.Sessions[0]
		if first.CheckOut != nil && !first.CheckOut.After(first.CheckIn) {
			return attendance.ErrCheckOutBeforeCheckIn
		}
	}

	return nil
}

// applyValueOverrides applies the explicit field overrides that win over
// recomputation: aggregate break time, overtime, status and the approval
// state. Invalid approval_status values are dropped, not rejected; the
// outward layer has always tolerated them and callers depend on it.
func applyValueOverrides(rec *attendance.DayRecord, req attendance.CorrectionRequest, mc metricsContext) {
	if v, ok := req.BreakTime.Value(); ok {
		rec.BreakMinutes = v
		worked := grossSessionMinutes(rec) - v
		if worked < 0 {
			worked = 0
		}
		rec.WorkedMinutes = worked
		rec.OvertimeMinutes = overtimeMinutes(rec, mc)
	} else if req.BreakTime.IsNull() {
		rec.BreakMinutes = 0
		rec.WorkedMinutes = grossSessionMinutes(rec)
		rec.OvertimeMinutes = overtimeMinutes(rec, mc)
	}

	if v, ok := req.OvertimeMinutes.Value(); ok {
		rec.OvertimeMinutes = v
	} else if req.OvertimeMinutes.IsNull() {
		rec.OvertimeMinutes = 0
	}

	if v, ok := req.Status.Value(); ok {
		rec.Status = attendance.DayStatus(v)
	}

	if req.StatusReason.Present() {
		if v, ok := req.StatusReason.Value(); ok {
			rec.StatusReason = &v
		} else {
			rec.StatusReason = nil
		}
	}

	if v, ok := req.ApprovalStatus.Value(); ok {
		if validator.IsInSlice(v, attendance.ValidApprovalStatuses) {
			rec.ApprovalStatus = attendance.ApprovalStatus(v)
		}
	}
}

// ApplyCorrection implements attendance.AttendanceService. The record is
// snapshotted before mutation; only fields present in the patch are applied;
// metrics recompute; the returned change records hold the normalized
// before/after pairs of the fields that actually moved. A correction that
// changes nothing is still audited as an attempt but is not persisted.
func (a *AttendanceServiceImpl) ApplyCorrection(ctx context.Context, req attendance.CorrectionRequest) (attendance.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	actorID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	var result attendance.DayRecord
	var changes []attendance.ChangeRecord

	err = a.records.InTx(ctx, func(ctx context.Context) error {
		rec, err := a.records.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		before := correctionSnapshot(&rec)

		if err := a.applyTimestampOverrides(&rec, req); err != nil {
			return err
		}

		mc := a.dayContext(ctx, rec.EmployeeID, rec.Date)
		recomputeMetrics(&rec, mc)
		applyValueOverrides(&rec, req, mc)

		// An appended remark always extends history, even when the note
		// repeats the previous one, so it diffs by the append itself.
		var remarkChange *attendance.ChangeRecord
		if v, ok := req.Remarks.Value(); ok && v != "" {
			var prev *string
			if len(rec.Remarks) > 0 {
				prev = strPtr(rec.Remarks[len(rec.Remarks)-1].Note)
			}
			rec.AddRemark(v, actorID, a.clk.Now())
			remarkChange = &attendance.ChangeRecord{Field: "remarks", Before: prev, After: strPtr(v)}
		}

		changes = diffSnapshots(req, before, correctionSnapshot(&rec))
		if remarkChange != nil {
			changes = append(changes, *remarkChange)
		}
		if len(changes) == 0 {
			result = rec
			return nil
		}

		rec.Source = attendance.SourceManual
		rec.UpdatedBy = actorID

		if err := a.records.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save corrected record: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	meta := map[string]interface{}{
		"record_id":    result.ID,
		"employee_id":  result.EmployeeID,
		"date":         result.Date.Format("2006-01-02"),
		"change_count": len(changes),
	}
	if len(changes) > 0 {
		meta["changes"] = changes
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionCorrection,
		EntityID:  result.ID,
		ActorID:   actorID,
		ActorRole: role,
		Meta:      meta,
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return attendance.CorrectionResponse{
		Record:  mapRecordToResponse(result),
		Changes: changes,
	}, nil
}

// ApproveRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApproveRecord(ctx context.Context, req attendance.ApproveRecordRequest) (attendance.DayRecordResponse, error) {
	return a.review(ctx, req.ID, attendance.ApprovalApproved, nil, req.Actor, audit.ActionApprove)
}

// RejectRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectRecord(ctx context.Context, req attendance.RejectRecordRequest) (attendance.DayRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayRecordResponse{}, err
	}
	return a.review(ctx, req.ID, attendance.ApprovalRejected, &req.Reason, req.Actor, audit.ActionReject)
}

func (a *AttendanceServiceImpl) review(ctx context.Context, id string, status attendance.ApprovalStatus, reason *string, actor attendance.ActorMeta, action audit.Action) (attendance.DayRecordResponse, error) {
	actorID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	var result attendance.DayRecord
	err = a.records.InTx(ctx, func(ctx context.Context) error {
		rec, err := a.records.GetByID(ctx, id)
		if err != nil {
			return err
		}

		rec.ApprovalStatus = status
		if reason != nil {
			rec.StatusReason = reason
			note := fmt.Sprintf("rejected: %s", *reason)
			rec.AddRemark(note, actorID, a.clk.Now())
		}
		rec.UpdatedBy = actorID

		if err := a.records.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save reviewed record: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    action,
		EntityID:  result.ID,
		ActorID:   actorID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"employee_id":     result.EmployeeID,
			"date":            result.Date.Format("2006-01-02"),
			"approval_status": string(status),
		},
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})

	return mapRecordToResponse(result), nil
}
