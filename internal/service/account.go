package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
	"github.com/hyunwoo-dev/elkmart/internal/metrics"
)

// Version conflicts are retried transparently this many times before
// the error reaches the caller.
const maxBalanceRetries = 3

// AccountService owns every balance mutation. Each mutation locks the
// account row, checks and writes the balance against that locked
// snapshot, and appends the ledger entry in the same transaction, so a
// committed operation is always fully applied and replayable.
type AccountService struct {
	accounts accountRepository
	ledger   ledgerRepository
	db       *sql.DB
}

func NewAccountService(accounts accountRepository, ledger ledgerRepository, db *sql.DB) *AccountService {
	return &AccountService{accounts: accounts, ledger: ledger, db: db}
}

func (s *AccountService) Deposit(ctx context.Context, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	entry, err := s.applyWithRetry(ctx, userID, domain.EntryKindDeposit, amount, occurredOn)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	metrics.Deposits.Inc()
	logging.FromContext(ctx).Info("deposit committed",
		"user_id", userID,
		"amount", amount,
		"balance_after", entry.BalanceAfter,
	)
	return entry, nil
}

func (s *AccountService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	entry, err := s.applyWithRetry(ctx, userID, domain.EntryKindWithdrawal, amount, occurredOn)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	metrics.Withdrawals.Inc()
	logging.FromContext(ctx).Info("withdrawal committed",
		"user_id", userID,
		"amount", amount,
		"balance_after", entry.BalanceAfter,
	)
	return entry, nil
}

// CreditForRefund books a RECEIPT entry. There is no HTTP surface for
// refunds yet; this is the reversal path purchase compensation would
// use.
func (s *AccountService) CreditForRefund(ctx context.Context, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	entry, err := s.applyWithRetry(ctx, userID, domain.EntryKindReceipt, amount, occurredOn)
	if err != nil {
		return nil, fmt.Errorf("CreditForRefund: %w", err)
	}
	return entry, nil
}

// DebitForPurchase runs the PAYMENT debit inside the caller's
// transaction so the purchase flow can commit the debit, the shipment
// and the notification rows as one unit. It does not commit.
func (s *AccountService) DebitForPurchase(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	entry, err := s.applyTx(ctx, tx, userID, domain.EntryKindPayment, amount, occurredOn)
	if err != nil {
		return nil, fmt.Errorf("DebitForPurchase: %w", err)
	}
	return entry, nil
}

func (s *AccountService) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetBalance: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error) {
	entries, total, err := s.ledger.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: %w", err)
	}
	return entries, total, nil
}

func (s *AccountService) applyWithRetry(ctx context.Context, userID uuid.UUID, kind domain.EntryKind, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry
	var err error

	for attempt := 1; attempt <= maxBalanceRetries; attempt++ {
		entry, err = s.apply(ctx, userID, kind, amount, occurredOn)
		if !errors.Is(err, domain.ErrVersionConflict) {
			return entry, err
		}
		logging.FromContext(ctx).Warn("balance write conflict, retrying",
			"user_id", userID,
			"kind", kind,
			"attempt", attempt,
		)
	}
	return nil, err
}

func (s *AccountService) apply(ctx context.Context, userID uuid.UUID, kind domain.EntryKind, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback()

	entry, err := s.applyTx(ctx, tx, userID, kind, amount, occurredOn)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("apply: commit: %w", err)
	}
	return entry, nil
}

// applyTx is the single read-check-write path for balances. The FOR
// UPDATE lock serializes concurrent mutations per account; the version
// condition on the balance write catches anything that slips past it.
func (s *AccountService) applyTx(ctx context.Context, tx *sql.Tx, userID uuid.UUID, kind domain.EntryKind, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("applyTx: %w", domain.ErrInvalidAmount)
	}

	account, err := s.accounts.GetForUpdateByUserID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("applyTx: %w", err)
	}

	newBalance := account.Balance + kind.SignedDelta(amount)
	if newBalance < 0 {
		return nil, fmt.Errorf("applyTx: %w", domain.ErrInsufficientFunds)
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		AccountID:     account.ID,
		UserID:        userID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		OccurredOn:    occurredOn,
		CreatedAt:     now,
	}
	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("applyTx: create entry: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, account.Version+1); err != nil {
		return nil, fmt.Errorf("applyTx: %w", err)
	}

	return entry, nil
}
