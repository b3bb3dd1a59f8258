package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	ids []string
	err error
}

func (f *fakeDirectory) ActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	return f.ids, f.err
}

func newTestFinalizer(env *testEnv, directory *fakeDirectory) *Finalizer {
	return NewFinalizer(env.repo, directory, env.shifts, env.leaves, env.auditor, env.clk, testConfig)
}

func TestAutoCloseStaleSessions(t *testing.T) {
	env := newTestEnv(t)
	env.shifts.shift = env.standardShift()
	ctx := authedContext(t, testEmployeeID, "employee")

	// A session opened at 09:00 and never closed
	created, err := env.svc.StartSession(ctx, startSessionReq())
	require.NoError(t, err)

	// Midnight passes
	env.clk.Advance(20 * time.Hour)

	finalizer := newTestFinalizer(env, &fakeDirectory{})
	require.NoError(t, finalizer.AutoCloseStaleSessions(context.Background()))

	rec, err := env.repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	require.NotNil(t, rec.Sessions[0].CheckOut)
	assert.Equal(t, attendance.SessionCompleted, rec.Sessions[0].Status)
	// Closed at the scheduled shift end, eight hours after check-in
	assert.Equal(t, 480, rec.WorkedMinutes)
	assert.Equal(t, attendance.StatusIncomplete, rec.Status)
	assert.Equal(t, attendance.ApprovalPending, rec.ApprovalStatus)
	assert.Equal(t, attendance.SourceSystem, rec.Source)
	assert.Equal(t, systemActor, rec.UpdatedBy)

	entry := env.auditor.last(t)
	assert.Equal(t, audit.ActionFinalize, entry.Action)
	assert.Equal(t, audit.SeverityWarning, entry.Severity)

	// Running again finds nothing left to close
	require.NoError(t, finalizer.AutoCloseStaleSessions(context.Background()))
	again, err := env.repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.UpdatedAt, again.UpdatedAt)
}

// Without a configured shift the session closes at its own check-in and
// contributes no worked time.
func TestAutoCloseStaleSessions_NoShift(t *testing.T) {
	env := newTestEnv(t)
	ctx := authedContext(t, testEmployeeID, "employee")

	created, err := env.svc.StartSession(ctx, startSessionReq())
	require.NoError(t, err)

	env.clk.Advance(20 * time.Hour)

	finalizer := newTestFinalizer(env, &fakeDirectory{})
	require.NoError(t, finalizer.AutoCloseStaleSessions(context.Background()))

	rec, err := env.repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.WorkedMinutes)
	assert.Equal(t, attendance.StatusIncomplete, rec.Status)
}

func TestRecordMissingDays(t *testing.T) {
	env := newTestEnv(t)
	directory := &fakeDirectory{ids: []string{testEmployeeID}}
	finalizer := newTestFinalizer(env, directory)

	require.NoError(t, finalizer.RecordMissingDays(context.Background()))

	yesterday := env.clk.DayOf(env.clk.Now().AddDate(0, 0, -1))
	rec, err := env.repo.GetByEmployeeAndDay(context.Background(), testEmployeeID, yesterday)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Equal(t, attendance.SourceSystem, rec.Source)
	assert.Empty(t, rec.Sessions)

	// Idempotent: a second run creates nothing new
	firstID := rec.ID
	require.NoError(t, finalizer.RecordMissingDays(context.Background()))
	rec, err = env.repo.GetByEmployeeAndDay(context.Background(), testEmployeeID, yesterday)
	require.NoError(t, err)
	assert.Equal(t, firstID, rec.ID)
}

func TestRecordMissingDays_LeaveAndHoliday(t *testing.T) {
	env := newTestEnv(t)
	env.leaves.onLeave = true
	directory := &fakeDirectory{ids: []string{testEmployeeID}}
	finalizer := newTestFinalizer(env, directory)

	require.NoError(t, finalizer.RecordMissingDays(context.Background()))

	yesterday := env.clk.DayOf(env.clk.Now().AddDate(0, 0, -1))
	rec, err := env.repo.GetByEmployeeAndDay(context.Background(), testEmployeeID, yesterday)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusOnLeave, rec.Status)
}
