package domain

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryKindDeposit    EntryKind = "DEPOSIT"
	EntryKindWithdrawal EntryKind = "WITHDRAWAL"
	EntryKindPayment    EntryKind = "PAYMENT"
	EntryKindReceipt    EntryKind = "RECEIPT"
)

func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindDeposit, EntryKindWithdrawal, EntryKindPayment, EntryKindReceipt:
		return true
	}
	return false
}

// SignedDelta is the effect of an entry of this kind on a balance:
// positive for money in, negative for money out.
func (k EntryKind) SignedDelta(amount int64) int64 {
	switch k {
	case EntryKindWithdrawal, EntryKindPayment:
		return -amount
	default:
		return amount
	}
}

// LedgerEntry is the immutable record of one balance-affecting event.
// Amount is always a positive magnitude; the kind carries the sign.
// BalanceBefore/BalanceAfter snapshot the account around the write, so
// replaying entries in creation order must reproduce the live balance.
type LedgerEntry struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	UserID        uuid.UUID
	Kind          EntryKind
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
	OccurredOn    time.Time
	CreatedAt     time.Time
}
