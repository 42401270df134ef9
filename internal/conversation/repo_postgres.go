package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"support-platform/pkg/utils"
)

// PostgresRepo persists conversation state in the conversations table.
// Tags live in a JSONB column.
//
// Tenancy invariant: every statement filters by organization_id.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) UpdatePriority(ctx context.Context, organizationID, conversationID, priority string, at time.Time) error {
	const q = `
		UPDATE conversations
		SET priority = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`
	return r.exec(ctx, q, organizationID, conversationID, priority, at)
}

func (r *PostgresRepo) Assign(ctx context.Context, organizationID, conversationID, agentID string, at time.Time) error {
	const q = `
		UPDATE conversations
		SET assigned_to = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`
	return r.exec(ctx, q, organizationID, conversationID, agentID, at)
}

// AppendTags merges new tags into the row's tag set. Read-modify-write runs
// in a transaction with the row locked so concurrent routing calls cannot
// drop each other's tags.
func (r *PostgresRepo) AppendTags(ctx context.Context, organizationID, conversationID string, tags []string, at time.Time) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		var raw []byte
		const sel = `
			SELECT tags FROM conversations
			WHERE organization_id = $1 AND id = $2
			FOR UPDATE`
		if err := tx.QueryRowContext(ctx, sel, organizationID, conversationID).Scan(&raw); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return fmt.Errorf("conversation: lock row: %w", err)
		}

		var current []string
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("conversation: decode tags: %w", err)
			}
		}
		for _, t := range tags {
			if !containsTag(current, t) {
				current = append(current, t)
			}
		}

		merged, err := json.Marshal(current)
		if err != nil {
			return err
		}
		const upd = `
			UPDATE conversations
			SET tags = $3, updated_at = $4
			WHERE organization_id = $1 AND id = $2`
		_, err = tx.ExecContext(ctx, upd, organizationID, conversationID, merged, at)
		return err
	})
}

func (r *PostgresRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
