package attendance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
)

// mutateToday loads (or lazily creates) today's record for the actor,
// applies mutate, recomputes derived metrics and saves — all inside one
// store transaction so concurrent transitions for the same employee/day
// cannot interleave.
func (a *AttendanceServiceImpl) mutateToday(ctx context.Context, employeeID string, mutate func(rec *attendance.DayRecord) error) (attendance.DayRecord, error) {
	day := a.clk.DayOf(a.clk.Now())

	var result attendance.DayRecord
	err := a.records.InTx(ctx, func(ctx context.Context) error {
		rec, err := a.records.FindOrCreate(ctx, employeeID, day, employeeID)
		if err != nil {
			return fmt.Errorf("failed to find or create day record: %w", err)
		}

		if err := mutate(&rec); err != nil {
			return err
		}

		mc := a.dayContext(ctx, employeeID, day.Date)
		recomputeMetrics(&rec, mc)

		rec.Source = attendance.SourceSelf
		rec.UpdatedBy = employeeID

		if err := a.records.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to save day record: %w", err)
		}

		result = rec
		return nil
	})
	if err != nil {
		return attendance.DayRecord{}, err
	}

	return result, nil
}

// StartSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartSession(ctx context.Context, req attendance.StartSessionRequest) (attendance.DayRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayRecordResponse{}, err
	}

	employeeID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	var sessionID string
	rec, err := a.mutateToday(ctx, employeeID, func(rec *attendance.DayRecord) error {
		if rec.ActiveSession() != nil {
			return attendance.ErrAlreadyActiveSession
		}

		session := attendance.Session{
			ID:              uuid.NewString(),
			CheckIn:         a.clk.Now(),
			WorkLocation:    attendance.WorkLocation(req.WorkLocation),
			LocationDetails: req.LocationDetails,
			Status:          attendance.SessionActive,
		}
		sessionID = session.ID
		rec.Sessions = append(rec.Sessions, session)
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionSessionStart,
		EntityID:  rec.ID,
		ActorID:   employeeID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"session_id":    sessionID,
			"work_location": req.WorkLocation,
			"date":          rec.Date.Format("2006-01-02"),
		},
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return mapRecordToResponse(rec), nil
}

// EndSession implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndSession(ctx context.Context, req attendance.EndSessionRequest) (attendance.DayRecordResponse, error) {
	employeeID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	var sessionID string
	rec, err := a.mutateToday(ctx, employeeID, func(rec *attendance.DayRecord) error {
		session := rec.ActiveSession()
		if session == nil {
			return attendance.ErrNoActiveSession
		}

		now := a.clk.Now()

		// An open break left behind is closed with the session.
		if open := session.OpenBreak(); open != nil {
			open.EndTime = &now
		}

		session.CheckOut = &now
		session.Status = attendance.SessionCompleted
		sessionID = session.ID
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionSessionEnd,
		EntityID:  rec.ID,
		ActorID:   employeeID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"session_id":     sessionID,
			"worked_minutes": rec.WorkedMinutes,
			"date":           rec.Date.Format("2006-01-02"),
		},
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return mapRecordToResponse(rec), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.DayRecordResponse, error) {
	employeeID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	var breakID string
	rec, err := a.mutateToday(ctx, employeeID, func(rec *attendance.DayRecord) error {
		session := rec.ActiveSession()
		if session == nil {
			return attendance.ErrNoActiveSession
		}
		if session.OpenBreak() != nil {
			return attendance.ErrBreakAlreadyActive
		}

		brk := attendance.Break{
			ID:        uuid.NewString(),
			StartTime: a.clk.Now(),
			BreakType: req.BreakType,
		}
		breakID = brk.ID
		session.Breaks = append(session.Breaks, brk)
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionBreakStart,
		EntityID:  rec.ID,
		ActorID:   employeeID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"break_id": breakID,
			"date":     rec.Date.Format("2006-01-02"),
		},
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return mapRecordToResponse(rec), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.EndBreakRequest) (attendance.DayRecordResponse, error) {
	employeeID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	var breakID string
	rec, err := a.mutateToday(ctx, employeeID, func(rec *attendance.DayRecord) error {
		session := rec.ActiveSession()
		if session == nil {
			return attendance.ErrNoActiveSession
		}
		open := session.OpenBreak()
		if open == nil {
			return attendance.ErrNoActiveBreak
		}

		now := a.clk.Now()
		open.EndTime = &now
		breakID = open.ID
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionBreakEnd,
		EntityID:  rec.ID,
		ActorID:   employeeID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"break_id":      breakID,
			"break_minutes": rec.BreakMinutes,
			"date":          rec.Date.Format("2006-01-02"),
		},
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return mapRecordToResponse(rec), nil
}

// CheckIn implements attendance.AttendanceService. Legacy single-session
// mode: a thin adapter over the same state machine that refuses a second
// session for the day.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.DayRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayRecordResponse{}, err
	}

	employeeID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	var sessionID string
	rec, err := a.mutateToday(ctx, employeeID, func(rec *attendance.DayRecord) error {
		if len(rec.Sessions) > 0 {
			return attendance.ErrAlreadyCheckedIn
		}

		session := attendance.Session{
			ID:              uuid.NewString(),
			CheckIn:         a.clk.Now(),
			WorkLocation:    attendance.WorkLocation(req.WorkLocation),
			LocationDetails: req.LocationDetails,
			Status:          attendance.SessionActive,
		}
		sessionID = session.ID
		rec.Sessions = append(rec.Sessions, session)
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionCheckIn,
		EntityID:  rec.ID,
		ActorID:   employeeID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"session_id":    sessionID,
			"work_location": req.WorkLocation,
			"date":          rec.Date.Format("2006-01-02"),
		},
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return mapRecordToResponse(rec), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.DayRecordResponse, error) {
	employeeID, role, err := actorFromContext(ctx)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	rec, err := a.mutateToday(ctx, employeeID, func(rec *attendance.DayRecord) error {
		if len(rec.Sessions) == 0 {
			return attendance.ErrNoCheckInFound
		}

		session := rec.ActiveSession()
		if session == nil {
			return attendance.ErrAlreadyCheckedOut
		}

		now := a.clk.Now()
		if open := session.OpenBreak(); open != nil {
			open.EndTime = &now
		}
		session.CheckOut = &now
		session.Status = attendance.SessionCompleted
		return nil
	})
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}

	a.emitAudit(ctx, audit.Entry{
		Action:    audit.ActionCheckOut,
		EntityID:  rec.ID,
		ActorID:   employeeID,
		ActorRole: role,
		Meta: map[string]interface{}{
			"worked_minutes": rec.WorkedMinutes,
			"date":           rec.Date.Format("2006-01-02"),
		},
		IPAddress: req.Actor.IPAddress,
		UserAgent: req.Actor.UserAgent,
	})

	return mapRecordToResponse(rec), nil
}
