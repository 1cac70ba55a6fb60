package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
)

const notificationColumns = `id, kind, recipient, payload, status, attempts, next_attempt_at, created_at`

// OutboxRepository stores notifications alongside the business writes
// that produced them. Rows are inserted inside the caller's transaction
// and drained by the dispatcher after commit.
type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Create(ctx context.Context, tx *sql.Tx, n *domain.Notification) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, recipient, payload, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Kind, n.Recipient, n.Payload, n.Status, n.Attempts, n.NextAttemptAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetDue returns pending notifications whose next attempt time has
// passed. The read takes no lock: a single dispatcher instance is
// assumed, and delivery is at-least-once anyway, so a second poller
// would at worst re-send a mail.
func (r *OutboxRepository) GetDue(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		WHERE status = 'pending' AND next_attempt_at <= now()
		ORDER BY created_at
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("GetDue: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(
			&n.ID, &n.Kind, &n.Recipient, &n.Payload,
			&n.Status, &n.Attempts, &n.NextAttemptAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("GetDue: scan: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetDue: rows: %w", err)
	}
	return notifications, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'sent' WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("MarkSent: %w", err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'failed' WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("MarkFailed: %w", err)
	}
	return nil
}

// Reschedule bumps the attempt counter and pushes the row back into the
// pending queue for a later retry.
func (r *OutboxRepository) Reschedule(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET attempts = attempts + 1, next_attempt_at = $1 WHERE id = $2`,
		nextAttemptAt, id,
	)
	if err != nil {
		return fmt.Errorf("Reschedule: %w", err)
	}
	return nil
}
