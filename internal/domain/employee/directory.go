package employee

import (
	"context"
)

// Directory is the read-only slice of the employee subsystem the engine
// needs: who should have had a record yesterday. Employee CRUD lives
// elsewhere.
type Directory interface {
	ActiveEmployeeIDs(ctx context.Context) ([]string, error)
}
