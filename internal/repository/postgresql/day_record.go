package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shiftwise/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/database"
)

type dayRecordRepository struct {
	db *database.DB
}

func NewDayRecordRepository(db *database.DB) attendance.DayRecordRepository {
	return &dayRecordRepository{db: db}
}

const dayRecordColumns = `
	id, employee_id, date, status,
	worked_minutes, break_minutes, overtime_minutes, late_minutes, early_exit_minutes,
	approval_status, status_reason, source, remarks,
	created_by, updated_by, created_at, updated_at
`

func scanDayRecord(row pgx.Row) (attendance.DayRecord, error) {
	var rec attendance.DayRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status,
		&rec.WorkedMinutes, &rec.BreakMinutes, &rec.OvertimeMinutes, &rec.LateMinutes, &rec.EarlyExitMinutes,
		&rec.ApprovalStatus, &rec.StatusReason, &rec.Source, &rec.Remarks,
		&rec.CreatedBy, &rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// InTx implements attendance.DayRecordRepository.
func (r *dayRecordRepository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTransaction(ctx, r.db, fn)
}

// FindOrCreate implements attendance.DayRecordRepository. The insert is
// idempotent under the (employee_id, date) unique constraint, so two racing
// first check-ins converge on the same row.
func (r *dayRecordRepository) FindOrCreate(ctx context.Context, employeeID string, day clock.DayRange, createdBy string) (attendance.DayRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	insertQuery := `
		INSERT INTO day_records (
			id, employee_id, date, status, approval_status, source, remarks,
			created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, '[]'::jsonb, $7, $7
		)
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	_, err := q.Exec(ctx, insertQuery,
		uuid.NewString(),
		employeeID,
		day.Date,
		attendance.StatusIncomplete,
		attendance.ApprovalAuto,
		attendance.SourceSelf,
		createdBy,
	)
	if err != nil {
		return attendance.DayRecord{}, fmt.Errorf("failed to insert day record: %w", err)
	}

	rec, err := r.GetByEmployeeAndDay(ctx, employeeID, day)
	if err != nil {
		return attendance.DayRecord{}, err
	}
	if rec == nil {
		return attendance.DayRecord{}, fmt.Errorf("day record missing after insert for employee %s", employeeID)
	}

	return *rec, nil
}

// GetByEmployeeAndDay implements attendance.DayRecordRepository.
func (r *dayRecordRepository) GetByEmployeeAndDay(ctx context.Context, employeeID string, day clock.DayRange) (*attendance.DayRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dayRecordColumns + `
		FROM day_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		LIMIT 1
	`

	rec, err := scanDayRecord(q.QueryRow(ctx, query, employeeID, day.Start, day.End))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get day record by employee and day: %w", err)
	}

	if err := r.loadSessions(ctx, q, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// GetByID implements attendance.DayRecordRepository.
func (r *dayRecordRepository) GetByID(ctx context.Context, id string) (attendance.DayRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dayRecordColumns + `
		FROM day_records
		WHERE id = $1
	`

	rec, err := scanDayRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.DayRecord{}, attendance.ErrRecordNotFound
		}
		return attendance.DayRecord{}, fmt.Errorf("failed to get day record by ID: %w", err)
	}

	if err := r.loadSessions(ctx, q, &rec); err != nil {
		return attendance.DayRecord{}, err
	}

	return rec, nil
}

// Save implements attendance.DayRecordRepository. The aggregate is written
// whole: the record row updates, sessions and breaks upsert, and rows the
// aggregate no longer owns are deleted.
func (r *dayRecordRepository) Save(ctx context.Context, record attendance.DayRecord) error {
	q := database.GetQuerier(ctx, r.db)

	updateQuery := `
		UPDATE day_records SET
			status = $2,
			worked_minutes = $3,
			break_minutes = $4,
			overtime_minutes = $5,
			late_minutes = $6,
			early_exit_minutes = $7,
			approval_status = $8,
			status_reason = $9,
			source = $10,
			remarks = $11,
			updated_by = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, updateQuery,
		record.ID,
		record.Status,
		record.WorkedMinutes,
		record.BreakMinutes,
		record.OvertimeMinutes,
		record.LateMinutes,
		record.EarlyExitMinutes,
		record.ApprovalStatus,
		record.StatusReason,
		record.Source,
		record.Remarks,
		record.UpdatedBy,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update day record: %w", err)
	}

	sessionIDs := make([]string, 0, len(record.Sessions))
	for _, s := range record.Sessions {
		sessionIDs = append(sessionIDs, s.ID)
	}

	if _, err := q.Exec(ctx,
		`DELETE FROM work_sessions WHERE day_record_id = $1 AND NOT (id = ANY($2))`,
		record.ID, sessionIDs,
	); err != nil {
		return fmt.Errorf("failed to prune removed sessions: %w", err)
	}

	for i, s := range record.Sessions {
		if err := r.saveSession(ctx, q, record.ID, i, s); err != nil {
			return err
		}
	}

	return nil
}

func (r *dayRecordRepository) saveSession(ctx context.Context, q database.Querier, recordID string, position int, s attendance.Session) error {
	upsertQuery := `
		INSERT INTO work_sessions (
			id, day_record_id, position, check_in, check_out,
			work_location, location_details, worked_minutes, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			work_location = EXCLUDED.work_location,
			location_details = EXCLUDED.location_details,
			worked_minutes = EXCLUDED.worked_minutes,
			status = EXCLUDED.status
	`

	if _, err := q.Exec(ctx, upsertQuery,
		s.ID, recordID, position, s.CheckIn, s.CheckOut,
		s.WorkLocation, s.LocationDetails, s.WorkedMinutes, s.Status,
	); err != nil {
		return fmt.Errorf("failed to upsert work session: %w", err)
	}

	breakIDs := make([]string, 0, len(s.Breaks))
	for _, b := range s.Breaks {
		breakIDs = append(breakIDs, b.ID)
	}

	if _, err := q.Exec(ctx,
		`DELETE FROM session_breaks WHERE session_id = $1 AND NOT (id = ANY($2))`,
		s.ID, breakIDs,
	); err != nil {
		return fmt.Errorf("failed to prune removed breaks: %w", err)
	}

	breakQuery := `
		INSERT INTO session_breaks (
			id, session_id, position, start_time, end_time, duration_minutes, break_type
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (id) DO UPDATE SET
			position = EXCLUDED.position,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			duration_minutes = EXCLUDED.duration_minutes,
			break_type = EXCLUDED.break_type
	`

	for j, b := range s.Breaks {
		if _, err := q.Exec(ctx, breakQuery,
			b.ID, s.ID, j, b.StartTime, b.EndTime, b.DurationMinutes, b.BreakType,
		); err != nil {
			return fmt.Errorf("failed to upsert session break: %w", err)
		}
	}

	return nil
}

// List implements attendance.DayRecordRepository.
func (r *dayRecordRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.DayRecord, int64, error) {
	q := database.GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM day_records WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count day records: %w", err)
	}

	orderByField := "date"
	switch filter.SortBy {
	case "status":
		orderByField = "status"
	case "worked_minutes":
		orderByField = "worked_minutes"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT `+dayRecordColumns+`
		FROM day_records
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 10
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	records, err := r.queryRecords(ctx, q, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListRange implements attendance.DayRecordRepository.
func (r *dayRecordRepository) ListRange(ctx context.Context, employeeID string, from, to clock.DayRange) ([]attendance.DayRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT ` + dayRecordColumns + `
		FROM day_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC
	`

	return r.queryRecords(ctx, q, query, employeeID, from.Start, to.End)
}

// ListOpenSessionsBefore implements attendance.DayRecordRepository.
func (r *dayRecordRepository) ListOpenSessionsBefore(ctx context.Context, cutoff time.Time) ([]attendance.DayRecord, error) {
	q := database.GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ` + prefixColumns("d", dayRecordColumns) + `
		FROM day_records d
		JOIN work_sessions s ON s.day_record_id = d.id
		WHERE s.status = 'active'
		  AND s.check_in < $1
	`

	return r.queryRecords(ctx, q, query, cutoff)
}

func (r *dayRecordRepository) queryRecords(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.DayRecord, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query day records: %w", err)
	}
	defer rows.Close()

	var records []attendance.DayRecord
	for rows.Next() {
		rec, err := scanDayRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day records: %w", err)
	}

	for i := range records {
		if err := r.loadSessions(ctx, q, &records[i]); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (r *dayRecordRepository) loadSessions(ctx context.Context, q database.Querier, rec *attendance.DayRecord) error {
	sessionQuery := `
		SELECT id, check_in, check_out, work_location, location_details, worked_minutes, status
		FROM work_sessions
		WHERE day_record_id = $1
		ORDER BY position ASC
	`

	rows, err := q.Query(ctx, sessionQuery, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to query work sessions: %w", err)
	}
	defer rows.Close()

	rec.Sessions = nil
	for rows.Next() {
		var s attendance.Session
		if err := rows.Scan(&s.ID, &s.CheckIn, &s.CheckOut, &s.WorkLocation, &s.LocationDetails, &s.WorkedMinutes, &s.Status); err != nil {
			return fmt.Errorf("failed to scan work session: %w", err)
		}
		rec.Sessions = append(rec.Sessions, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate work sessions: %w", err)
	}

	for i := range rec.Sessions {
		if err := r.loadBreaks(ctx, q, &rec.Sessions[i]); err != nil {
			return err
		}
	}

	return nil
}

func (r *dayRecordRepository) loadBreaks(ctx context.Context, q database.Querier, s *attendance.Session) error {
	breakQuery := `
		SELECT id, start_time, end_time, duration_minutes, break_type
		FROM session_breaks
		WHERE session_id = $1
		ORDER BY position ASC
	`

	rows, err := q.Query(ctx, breakQuery, s.ID)
	if err != nil {
		return fmt.Errorf("failed to query session breaks: %w", err)
	}
	defer rows.Close()

	s.Breaks = nil
	for rows.Next() {
		var b attendance.Break
		if err := rows.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.DurationMinutes, &b.BreakType); err != nil {
			return fmt.Errorf("failed to scan session break: %w", err)
		}
		s.Breaks = append(s.Breaks, b)
	}

	return rows.Err()
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias, for queries that join.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
