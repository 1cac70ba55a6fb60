package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
	"github.com/hyunwoo-dev/elkmart/internal/testutil"
)

func setupAccountTest(t *testing.T, db *sql.DB) (*AccountService, *repository.LedgerRepository) {
	t.Helper()
	ledgerRepo := repository.NewLedgerRepository(db)
	return NewAccountService(repository.NewAccountRepository(db), ledgerRepo, db), ledgerRepo
}

func TestDeposit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, userID, 0)

	entry, err := svc.Deposit(ctx, userID, 100_000, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(0), entry.BalanceBefore)
	assert.Equal(t, int64(100_000), entry.BalanceAfter)

	entry, err = svc.Deposit(ctx, userID, 50_000, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), entry.BalanceAfter)

	assert.Equal(t, int64(150_000), testutil.GetAccountBalance(t, db, accountID))
	assert.Equal(t, 2, testutil.CountLedgerEntries(t, db, accountID, "DEPOSIT"))
}

func TestWithdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, userID, 100_000)

	entry, err := svc.Withdraw(ctx, userID, 30_000, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), entry.BalanceBefore)
	assert.Equal(t, int64(70_000), entry.BalanceAfter)

	assert.Equal(t, int64(70_000), testutil.GetAccountBalance(t, db, accountID))
	assert.Equal(t, 1, testutil.CountLedgerEntries(t, db, accountID, "WITHDRAWAL"))
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, userID, 10_000)

	_, err := svc.Withdraw(ctx, userID, 10_001, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The failed attempt must leave no trace.
	assert.Equal(t, int64(10_000), testutil.GetAccountBalance(t, db, accountID))
	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, accountID, "WITHDRAWAL"))
}

func TestDeposit_InvalidAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	testutil.SeedAccount(t, db, userID, 0)

	_, err := svc.Deposit(ctx, userID, 0, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Deposit(ctx, userID, -500, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDeposit_AccountNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	_, err := svc.Deposit(ctx, uuid.New(), 1000, time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// Two concurrent withdrawals of 60.00 against a 100.00 balance: exactly
// one may win, and the loser must not drive the balance negative.
func TestWithdraw_ConcurrentDoesNotOverdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, userID, 10_000)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Withdraw(ctx, userID, 6_000, time.Now().UTC())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(4_000), testutil.GetAccountBalance(t, db, accountID))
}

func TestDeposit_ConcurrentAllApply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, userID, 0)

	const n = 10
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Deposit(ctx, userID, 1_000, time.Now().UTC())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n*1_000), testutil.GetAccountBalance(t, db, accountID))
	assert.Equal(t, n, testutil.CountLedgerEntries(t, db, accountID, "DEPOSIT"))
}

// Replaying the ledger must reproduce the stored balance.
func TestLedgerReplayMatchesBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, ledgerRepo := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, userID, 0)

	now := time.Now().UTC()
	_, err := svc.Deposit(ctx, userID, 50_000, now)
	require.NoError(t, err)
	_, err = svc.Withdraw(ctx, userID, 12_500, now)
	require.NoError(t, err)
	_, err = svc.CreditForRefund(ctx, userID, 2_500, now)
	require.NoError(t, err)

	sum, err := ledgerRepo.SignedSum(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, testutil.GetAccountBalance(t, db, accountID), sum)
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc, _ := setupAccountTest(t, db)

	userID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	testutil.SeedAccount(t, db, userID, 0)

	now := time.Now().UTC()
	for range 3 {
		_, err := svc.Deposit(ctx, userID, 1_000, now)
		require.NoError(t, err)
	}

	entries, total, err := svc.ListTransactions(ctx, userID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, entries, 2)
}
