package audit

import (
	"context"
)

// Action identifies what happened, in the vocabulary the audit trail keys on.
type Action string

const (
	ActionCheckIn      Action = "CHECK_IN"
	ActionCheckOut     Action = "CHECK_OUT"
	ActionSessionStart Action = "SESSION_START"
	ActionSessionEnd   Action = "SESSION_END"
	ActionBreakStart   Action = "BREAK_START"
	ActionBreakEnd     Action = "BREAK_END"
	ActionCorrection   Action = "ATTENDANCE_CORRECTION"
	ActionApprove      Action = "ATTENDANCE_APPROVE"
	ActionReject       Action = "ATTENDANCE_REJECT"
	ActionFinalize     Action = "ATTENDANCE_FINALIZE"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Entry is one immutable audit record. Meta carries the action-specific
// snapshot (changed fields, session ids, computed minutes).
type Entry struct {
	Action     Action
	Severity   Severity
	EntityType string
	EntityID   string
	ActorID    string
	ActorRole  string
	Meta       map[string]interface{}
	IPAddress  string
	UserAgent  string
}

// Emitter records audit entries. Implementations must be append-only.
// Callers treat failures as non-fatal: a lost audit entry is logged and the
// primary operation proceeds.
type Emitter interface {
	LogAction(ctx context.Context, entry Entry) error
}
