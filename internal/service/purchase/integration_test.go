package purchase

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
	"github.com/hyunwoo-dev/elkmart/internal/service"
	"github.com/hyunwoo-dev/elkmart/internal/testutil"
)

func setupPurchaseTest(t *testing.T, db *sql.DB) *Service {
	t.Helper()

	accountSvc := service.NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		db,
	)
	return NewService(
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
		accountSvc,
		repository.NewShipmentRepository(db),
		repository.NewOutboxRepository(db),
		db,
	)
}

type purchaseFixture struct {
	buyerID        uuid.UUID
	buyerAccountID uuid.UUID
	sellerID       uuid.UUID
	productID      uuid.UUID
}

func seedPurchase(t *testing.T, db *sql.DB, balance, price int64) purchaseFixture {
	t.Helper()

	sellerID := testutil.SeedUser(t, db, "seller@test.com", "Seller")
	storeID := testutil.SeedStore(t, db, sellerID, "Seller Mart")
	productID := testutil.SeedProduct(t, db, storeID, "Keyboard", price)

	buyerID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	accountID := testutil.SeedAccount(t, db, buyerID, balance)

	return purchaseFixture{
		buyerID:        buyerID,
		buyerAccountID: accountID,
		sellerID:       sellerID,
		productID:      productID,
	}
}

func TestPurchase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupPurchaseTest(t, db)
	fx := seedPurchase(t, db, 1_000_000, 500_000)

	conf, err := svc.Purchase(ctx, Request{
		BuyerID:   fx.buyerID,
		ProductID: fx.productID,
		Quantity:  1,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500_000), conf.Amount)
	assert.Equal(t, int64(500_000), conf.LedgerEntry.BalanceAfter)
	assert.Equal(t, domain.ShipmentStatusPending, conf.Shipment.Status)

	// All effects of one purchase land together.
	assert.Equal(t, int64(500_000), testutil.GetAccountBalance(t, db, fx.buyerAccountID))
	assert.Equal(t, 1, testutil.CountLedgerEntries(t, db, fx.buyerAccountID, "PAYMENT"))
	assert.Equal(t, 1, testutil.CountShipments(t, db, fx.buyerID))
	assert.Equal(t, "PENDING", testutil.GetShipmentStatus(t, db, conf.Shipment.ID))
	assert.Equal(t, 1, testutil.CountNotifications(t, db, string(domain.NotificationKindPurchaseConfirmed)))
	assert.Equal(t, 1, testutil.CountNotifications(t, db, string(domain.NotificationKindShippingRequested)))
}

func TestPurchase_MultipleQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupPurchaseTest(t, db)
	fx := seedPurchase(t, db, 1_000_000, 200_000)

	conf, err := svc.Purchase(ctx, Request{
		BuyerID:   fx.buyerID,
		ProductID: fx.productID,
		Quantity:  4,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(800_000), conf.Amount)
	assert.Equal(t, 4, conf.Shipment.Quantity)
	assert.Equal(t, int64(200_000), testutil.GetAccountBalance(t, db, fx.buyerAccountID))
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupPurchaseTest(t, db)
	fx := seedPurchase(t, db, 100_000, 500_000)

	_, err := svc.Purchase(ctx, Request{
		BuyerID:   fx.buyerID,
		ProductID: fx.productID,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Nothing may survive the rollback.
	assert.Equal(t, int64(100_000), testutil.GetAccountBalance(t, db, fx.buyerAccountID))
	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, fx.buyerAccountID, "PAYMENT"))
	assert.Equal(t, 0, testutil.CountShipments(t, db, fx.buyerID))
	assert.Equal(t, 0, testutil.CountNotifications(t, db, string(domain.NotificationKindPurchaseConfirmed)))
}

type failingShipments struct{}

func (failingShipments) Create(ctx context.Context, tx *sql.Tx, s *domain.Shipment) error {
	return errors.New("shipments table unavailable")
}

// A failure after the debit but before commit must roll everything
// back: no orphan debit, no ledger trace, no queued mail.
func TestPurchase_ShipmentCreateFailureRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := seedPurchase(t, db, 1_000_000, 500_000)

	accountSvc := service.NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		db,
	)
	svc := NewService(
		repository.NewUserRepository(db),
		repository.NewProductRepository(db),
		accountSvc,
		failingShipments{},
		repository.NewOutboxRepository(db),
		db,
	)

	_, err := svc.Purchase(ctx, Request{
		BuyerID:   fx.buyerID,
		ProductID: fx.productID,
		Quantity:  1,
	})
	require.Error(t, err)

	assert.Equal(t, int64(1_000_000), testutil.GetAccountBalance(t, db, fx.buyerAccountID))
	assert.Equal(t, 0, testutil.CountLedgerEntries(t, db, fx.buyerAccountID, "PAYMENT"))
	assert.Equal(t, 0, testutil.CountShipments(t, db, fx.buyerID))
	assert.Equal(t, 0, testutil.CountNotifications(t, db, string(domain.NotificationKindPurchaseConfirmed)))
	assert.Equal(t, 0, testutil.CountNotifications(t, db, string(domain.NotificationKindShippingRequested)))
}

func TestPurchase_BuyerNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupPurchaseTest(t, db)
	fx := seedPurchase(t, db, 1_000_000, 500_000)

	_, err := svc.Purchase(ctx, Request{
		BuyerID:   uuid.New(),
		ProductID: fx.productID,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrBuyerNotFound)
}

func TestPurchase_ProductNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupPurchaseTest(t, db)
	fx := seedPurchase(t, db, 1_000_000, 500_000)

	_, err := svc.Purchase(ctx, Request{
		BuyerID:   fx.buyerID,
		ProductID: uuid.New(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
