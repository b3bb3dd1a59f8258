package attendance

import (
	"context"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
)

// DayRecordRepository defines data access for day records and their owned
// sessions and breaks. All date lookups take a clock.DayRange so the full
// local calendar day is always covered; callers never pass bare timestamps.
type DayRecordRepository interface {
	// InTx runs fn as one atomic unit against the store. Session and break
	// state transitions for a single (employee, day) are serialized by
	// wrapping find-or-create, mutation and save in one InTx call.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	// FindOrCreate returns the record for (employeeID, day), creating it if
	// absent. Creation is idempotent: concurrent calls for the same key
	// yield the same row.
	FindOrCreate(ctx context.Context, employeeID string, day clock.DayRange, createdBy string) (DayRecord, error)

	// GetByEmployeeAndDay returns the record for the day, or nil when none
	// exists.
	GetByEmployeeAndDay(ctx context.Context, employeeID string, day clock.DayRange) (*DayRecord, error)

	// GetByID retrieves a record with its sessions and breaks.
	GetByID(ctx context.Context, id string) (DayRecord, error)

	// Save persists the aggregate: the record row plus upserts of every
	// session and break it owns.
	Save(ctx context.Context, record DayRecord) error

	// List retrieves records with filters and pagination.
	List(ctx context.Context, filter RecordFilter) ([]DayRecord, int64, error)

	// ListRange returns all records for the employee between the two days,
	// inclusive, ordered by date.
	ListRange(ctx context.Context, employeeID string, from, to clock.DayRange) ([]DayRecord, error)

	// ListOpenSessionsBefore returns records that still carry an active
	// session whose check-in is older than the cutoff. Used by finalization.
	ListOpenSessionsBefore(ctx context.Context, cutoff time.Time) ([]DayRecord, error)
}
