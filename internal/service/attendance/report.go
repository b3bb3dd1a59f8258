package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
)

// GetRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetRecord(ctx context.Context, id string) (attendance.DayRecordResponse, error) {
	rec, err := a.records.GetByID(ctx, id)
	if err != nil {
		return attendance.DayRecordResponse{}, err
	}
	return mapRecordToResponse(rec), nil
}

// ListRecords implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 10
	}
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	records, total, err := a.records.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list day records: %w", err)
	}

	responses := make([]attendance.DayRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	showing := "0 of 0"
	if total > 0 && len(records) > 0 {
		start := (filter.Page-1)*filter.Limit + 1
		end := start + len(records) - 1
		showing = fmt.Sprintf("%d-%d of %d", start, end, total)
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    responses,
	}, nil
}

// GetMyRecords implements attendance.AttendanceService. The employee filter
// always comes from the token, never from the query string.
func (a *AttendanceServiceImpl) GetMyRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	employeeID, _, err := actorFromContext(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	filter.EmployeeID = &employeeID
	return a.ListRecords(ctx, filter)
}

// MonthlySummary implements attendance.AttendanceService. Days without a
// record count as absent, so the five status buckets always sum to the
// calendar length of the month. Incomplete records fold into the absent
// bucket for the same reason.
func (a *AttendanceServiceImpl) MonthlySummary(ctx context.Context, req attendance.SummaryRequest) (attendance.MonthlySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}

	loc := a.clk.Now().Location()
	firstOfMonth := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, loc)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	totalDays := lastOfMonth.Day()

	records, err := a.records.ListRange(ctx, req.EmployeeID, a.clk.DayOf(firstOfMonth), a.clk.DayOf(lastOfMonth))
	if err != nil {
		return attendance.MonthlySummaryResponse{}, fmt.Errorf("failed to load records for summary: %w", err)
	}

	summary := attendance.MonthlySummaryResponse{
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		Month:      req.Month,
		TotalDays:  totalDays,
	}

	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusHalfDay:
			summary.HalfDays++
		case attendance.StatusOnLeave:
			summary.LeaveDays++
		case attendance.StatusHoliday:
			summary.HolidayDays++
		}

		summary.TotalWorkMinutes += rec.WorkedMinutes
		summary.TotalOvertimeMinutes += rec.OvertimeMinutes
		summary.TotalLateMinutes += rec.LateMinutes
		summary.TotalEarlyExitMinutes += rec.EarlyExitMinutes

		if rec.LateMinutes > 0 {
			summary.LateDays++
		}
		if rec.EarlyExitMinutes > 0 {
			summary.EarlyDepartures++
		}
	}

	// Absent is everything left over: missing days, absent records and
	// incomplete records alike.
	summary.AbsentDays = totalDays - summary.PresentDays - summary.HalfDays - summary.LeaveDays - summary.HolidayDays

	workingDays := totalDays - summary.HolidayDays - summary.LeaveDays
	if workingDays > 0 {
		summary.AttendancePercentage = roundTo2((float64(summary.PresentDays) + 0.5*float64(summary.HalfDays)) / float64(workingDays) * 100)
	}

	attendedDays := summary.PresentDays + summary.HalfDays
	if attendedDays > 0 {
		summary.AverageWorkHours = roundTo2(float64(summary.TotalWorkMinutes) / float64(attendedDays) / 60)
	}
	if summary.LateDays > 0 {
		summary.AverageLateMinutes = roundTo2(float64(summary.TotalLateMinutes) / float64(summary.LateDays))
	}
	if summary.EarlyDepartures > 0 {
		summary.AverageEarlyExitMinutes = roundTo2(float64(summary.TotalEarlyExitMinutes) / float64(summary.EarlyDepartures))
	}

	return summary, nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
