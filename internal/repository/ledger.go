package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
)

const ledgerColumns = `id, account_id, user_id, kind, amount,
	balance_before, balance_after, occurred_on, created_at`

// LedgerRepository is append-only: entries are never updated or
// deleted once written.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Create(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (
			id, account_id, user_id, kind, amount,
			balance_before, balance_after, occurred_on, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.AccountID, entry.UserID, entry.Kind, entry.Amount,
		entry.BalanceBefore, entry.BalanceAfter, entry.OccurredOn, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByUserID: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("GetByUserID: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("GetByUserID: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("GetByUserID: rows: %w", err)
	}
	return entries, total, nil
}

// SignedSum replays the ledger for an account: deposits and receipts
// count positive, withdrawals and payments negative. The result must
// always equal the account's live balance.
func (r *LedgerRepository) SignedSum(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(
			CASE WHEN kind IN ('WITHDRAWAL', 'PAYMENT') THEN -amount ELSE amount END
		), 0) FROM ledger_entries WHERE account_id = $1`,
		accountID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("SignedSum: %w", err)
	}
	return sum, nil
}

func scanLedgerEntry(s scanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := s.Scan(
		&e.ID, &e.AccountID, &e.UserID, &e.Kind, &e.Amount,
		&e.BalanceBefore, &e.BalanceAfter, &e.OccurredOn, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
