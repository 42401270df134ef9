package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events to the audit_events table.
//
// The table is INSERT-only; retention/partitioning is an operational concern.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
		INSERT INTO audit_events
			(id, organization_id, type, message_id, conversation_id, rule_id, action_type, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.OrganizationID, string(e.Type),
		nullable(e.MessageID), nullable(e.ConversationID), nullable(e.RuleID), nullable(e.ActionType),
		e.Message, nullable(e.Metadata), e.CreatedAt,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
