package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(t *testing.T, env *testEnv, employeeID string, date time.Time, status attendance.DayStatus, worked, late int) {
	t.Helper()
	ctx := context.Background()

	rec, err := env.repo.FindOrCreate(ctx, employeeID, clock.DayRangeIn(date, time.UTC), employeeID)
	require.NoError(t, err)

	rec.Status = status
	rec.WorkedMinutes = worked
	rec.LateMinutes = late
	require.NoError(t, env.repo.Save(ctx, rec))
}

func TestListRecords_Pagination(t *testing.T) {
	env := newTestEnv(t)
	adminCtx := authedContext(t, testAdminID, "admin")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		seedRecord(t, env, testEmployeeID, base.AddDate(0, 0, i), attendance.StatusPresent, 480, 0)
	}

	result, err := env.svc.ListRecords(adminCtx, attendance.RecordFilter{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(25), result.TotalCount)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 10, result.Limit)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, "11-20 of 25", result.Showing)
	assert.Len(t, result.Records, 10)
}

func TestListRecords_EmptyResult(t *testing.T) {
	env := newTestEnv(t)
	adminCtx := authedContext(t, testAdminID, "admin")

	result, err := env.svc.ListRecords(adminCtx, attendance.RecordFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.TotalCount)
	assert.Equal(t, "0 of 0", result.Showing)
	assert.Empty(t, result.Records)
}

func TestListRecords_ValidatesFilter(t *testing.T) {
	env := newTestEnv(t)
	adminCtx := authedContext(t, testAdminID, "admin")

	var verrs validator.ValidationErrors
	_, err := env.svc.ListRecords(adminCtx, attendance.RecordFilter{Limit: 500})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "limit")

	_, err = env.svc.ListRecords(adminCtx, attendance.RecordFilter{SortBy: "salary"})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "sort_by")
}

// GetMyRecords always scopes to the token's employee, whatever the filter
// says.
func TestGetMyRecords_ScopedToActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := authedContext(t, testEmployeeID, "employee")

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	seedRecord(t, env, testEmployeeID, day, attendance.StatusPresent, 480, 0)
	seedRecord(t, env, testAdminID, day, attendance.StatusPresent, 480, 0)

	other := testAdminID
	result, err := env.svc.GetMyRecords(ctx, attendance.RecordFilter{EmployeeID: &other})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, testEmployeeID, result.Records[0].EmployeeID)
}

func TestMonthlySummary_BucketsAndAverages(t *testing.T) {
	env := newTestEnv(t)
	ctx := authedContext(t, testEmployeeID, "employee")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	day := 0
	next := func() time.Time { d := base.AddDate(0, 0, day); day++; return d }

	for i := 0; i < 18; i++ {
		late := 0
		if i < 2 {
			late = 10
		}
		seedRecord(t, env, testEmployeeID, next(), attendance.StatusPresent, 480, late)
	}
	for i := 0; i < 2; i++ {
		seedRecord(t, env, testEmployeeID, next(), attendance.StatusHalfDay, 240, 0)
	}
	seedRecord(t, env, testEmployeeID, next(), attendance.StatusOnLeave, 0, 0)
	for i := 0; i < 2; i++ {
		seedRecord(t, env, testEmployeeID, next(), attendance.StatusHoliday, 0, 0)
	}

	summary, err := env.svc.MonthlySummary(ctx, attendance.SummaryRequest{
		EmployeeID: testEmployeeID,
		Year:       2025,
		Month:      3,
	})
	require.NoError(t, err)

	assert.Equal(t, 31, summary.TotalDays)
	assert.Equal(t, 18, summary.PresentDays)
	assert.Equal(t, 2, summary.HalfDays)
	assert.Equal(t, 1, summary.LeaveDays)
	assert.Equal(t, 2, summary.HolidayDays)
	assert.Equal(t, 8, summary.AbsentDays)

	// The five buckets always cover the whole month
	total := summary.PresentDays + summary.AbsentDays + summary.HalfDays + summary.LeaveDays + summary.HolidayDays
	assert.Equal(t, summary.TotalDays, total)

	assert.Equal(t, 9120, summary.TotalWorkMinutes)
	assert.Equal(t, 2, summary.LateDays)
	assert.Equal(t, 20, summary.TotalLateMinutes)
	assert.InDelta(t, 67.86, summary.AttendancePercentage, 0.001)
	assert.InDelta(t, 7.6, summary.AverageWorkHours, 0.001)
	assert.InDelta(t, 10.0, summary.AverageLateMinutes, 0.001)
	assert.Equal(t, 0.0, summary.AverageEarlyExitMinutes)
}

func TestMonthlySummary_ValidatesRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := authedContext(t, testEmployeeID, "employee")

	var verrs validator.ValidationErrors
	_, err := env.svc.MonthlySummary(ctx, attendance.SummaryRequest{EmployeeID: testEmployeeID, Year: 2025, Month: 13})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "month")
}

func TestGetRecord_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := authedContext(t, testAdminID, "admin")

	_, err := env.svc.GetRecord(ctx, "123e4567-e89b-12d3-a456-426614174000")
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}
