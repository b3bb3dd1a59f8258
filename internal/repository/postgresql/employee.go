package postgresql

import (
	"context"
	"fmt"

	"github.com/shiftwise/attendance-backend-go/internal/domain/employee"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/database"
)

type employeeDirectory struct {
	db *database.DB
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}

// ActiveEmployeeIDs implements employee.Directory.
func (e *employeeDirectory) ActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	q := database.GetQuerier(ctx, e.db)

	query := `
		SELECT id
		FROM employees
		WHERE employment_status = 'active'
		ORDER BY id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
