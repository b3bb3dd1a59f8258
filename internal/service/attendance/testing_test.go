package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shiftwise/attendance-backend-go/internal/config"
	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
	"github.com/shiftwise/attendance-backend-go/internal/domain/schedule"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/require"
)

const (
	testEmployeeID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testAdminID    = "550e8400-e29b-41d4-a716-446655440000"
)

var testConfig = config.AttendanceConfig{
	FullDayMinutes:      480,
	HalfDayMinutes:      240,
	DefaultGraceMinutes: 15,
}

// memoryRecordRepo is an in-memory DayRecordRepository. InTx serializes with
// a dedicated mutex, mirroring the per-aggregate locking the real store gives
// the state machine.
type memoryRecordRepo struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	records map[string]attendance.DayRecord
}

func newMemoryRecordRepo() *memoryRecordRepo {
	return &memoryRecordRepo{records: make(map[string]attendance.DayRecord)}
}

func (m *memoryRecordRepo) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (m *memoryRecordRepo) FindOrCreate(ctx context.Context, employeeID string, day clock.DayRange, createdBy string) (attendance.DayRecord, error) {
	if existing, err := m.GetByEmployeeAndDay(ctx, employeeID, day); err != nil {
		return attendance.DayRecord{}, err
	} else if existing != nil {
		return *existing, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := attendance.DayRecord{
		ID:             uuid.NewString(),
		EmployeeID:     employeeID,
		Date:           day.Date,
		Status:         attendance.StatusIncomplete,
		ApprovalStatus: attendance.ApprovalAuto,
		Source:         attendance.SourceSelf,
		CreatedBy:      createdBy,
		UpdatedBy:      createdBy,
		CreatedAt:      day.Date,
		UpdatedAt:      day.Date,
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryRecordRepo) GetByEmployeeAndDay(ctx context.Context, employeeID string, day clock.DayRange) (*attendance.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && day.Contains(rec.Date) {
			copied := rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryRecordRepo) GetByID(ctx context.Context, id string) (attendance.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return attendance.DayRecord{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (m *memoryRecordRepo) Save(ctx context.Context, record attendance.DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	m.records[record.ID] = record
	return nil
}

func (m *memoryRecordRepo) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.DayRecord, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []attendance.DayRecord
	for _, rec := range m.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	asc := filter.SortOrder == "asc"
	sort.Slice(matched, func(i, j int) bool {
		if asc {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[j].Date.Before(matched[i].Date)
	})

	total := int64(len(matched))

	start := (filter.Page - 1) * filter.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (m *memoryRecordRepo) ListRange(ctx context.Context, employeeID string, from, to clock.DayRange) ([]attendance.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []attendance.DayRecord
	for _, rec := range m.records {
		if rec.EmployeeID != employeeID {
			continue
		}
		if rec.Date.Before(from.Start) || rec.Date.After(to.End) {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })
	return matched, nil
}

func (m *memoryRecordRepo) ListOpenSessionsBefore(ctx context.Context, cutoff time.Time) ([]attendance.DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []attendance.DayRecord
	for _, rec := range m.records {
		for _, s := range rec.Sessions {
			if s.Status == attendance.SessionActive && s.CheckIn.Before(cutoff) {
				matched = append(matched, rec)
				break
			}
		}
	}
	return matched, nil
}

// fakeShifts returns the same shift for every lookup.
type fakeShifts struct {
	shift *schedule.Shift
	err   error
}

func (f *fakeShifts) ExpectedShift(ctx context.Context, employeeID string, date time.Time) (*schedule.Shift, error) {
	return f.shift, f.err
}

type fakeLeaves struct {
	onLeave bool
	holiday bool
	err     error
}

func (f *fakeLeaves) IsOnApprovedLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	return f.onLeave, f.err
}

func (f *fakeLeaves) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	return f.holiday, f.err
}

// recordingAuditor captures entries; fail makes every write error so tests
// can prove audit failures never surface.
type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
	fail    bool
}

func (r *recordingAuditor) LogAction(ctx context.Context, entry audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("audit sink unavailable")
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAuditor) last(t *testing.T) audit.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

type testEnv struct {
	svc     attendance.AttendanceService
	repo    *memoryRecordRepo
	shifts  *fakeShifts
	leaves  *fakeLeaves
	auditor *recordingAuditor
	clk     *clock.Fixed
}

// newTestEnv wires the service against in-memory collaborators, frozen at
// 2025-03-10 09:00 UTC.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:    newMemoryRecordRepo(),
		shifts:  &fakeShifts{},
		leaves:  &fakeLeaves{},
		auditor: &recordingAuditor{},
		clk:     &clock.Fixed{Current: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	env.svc = NewAttendanceService(env.repo, env.shifts, env.leaves, env.auditor, env.clk, testConfig)
	return env
}

// standardShift is 09:00-17:00 with 15 minutes grace, on the fixed test day.
func (e *testEnv) standardShift() *schedule.Shift {
	day := e.clk.Today()
	return &schedule.Shift{
		Start:        day.Add(9 * time.Hour),
		End:          day.Add(17 * time.Hour),
		GraceMinutes: 15,
	}
}

func authedContext(t *testing.T, employeeID, role string) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        role,
		"type":        "access",
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}
