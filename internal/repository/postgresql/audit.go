package postgresql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shiftwise/attendance-backend-go/internal/domain/audit"
	"github.com/shiftwise/attendance-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Emitter {
	return &auditRepository{db: db}
}

// LogAction implements audit.Emitter. The table is append-only; there is no
// update or delete path on purpose.
func (a *auditRepository) LogAction(ctx context.Context, entry audit.Entry) error {
	q := database.GetQuerier(ctx, a.db)

	query := `
		INSERT INTO audit_logs (
			id, action, severity, entity_type, entity_id,
			actor_id, actor_role, meta, ip_address, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := q.Exec(ctx, query,
		uuid.NewString(),
		entry.Action,
		entry.Severity,
		entry.EntityType,
		entry.EntityID,
		entry.ActorID,
		entry.ActorRole,
		entry.Meta,
		entry.IPAddress,
		entry.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}
