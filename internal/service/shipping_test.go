package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
	"github.com/hyunwoo-dev/elkmart/internal/testutil"
)

func setupShippingTest(t *testing.T, db *sql.DB) *ShippingService {
	t.Helper()
	return NewShippingService(
		repository.NewShipmentRepository(db),
		repository.NewProductRepository(db),
		repository.NewUserRepository(db),
		repository.NewOutboxRepository(db),
		db,
	)
}

type shippingFixture struct {
	sellerID   uuid.UUID
	buyerID    uuid.UUID
	productID  uuid.UUID
	shipmentID uuid.UUID
}

func seedShipment(t *testing.T, db *sql.DB, status domain.ShipmentStatus) shippingFixture {
	t.Helper()

	sellerID := testutil.SeedUser(t, db, "seller@test.com", "Seller")
	buyerID := testutil.SeedUser(t, db, "buyer@test.com", "Buyer")
	storeID := testutil.SeedStore(t, db, sellerID, "Seller Mart")
	productID := testutil.SeedProduct(t, db, storeID, "Keyboard", 50_000)

	shipmentID := uuid.New()
	_, err := db.Exec(
		`INSERT INTO shipments (id, product_id, buyer_id, quantity, status, created_at, updated_at)
		 VALUES ($1, $2, $3, 1, $4, $5, $5)`,
		shipmentID, productID, buyerID, status, time.Now().UTC(),
	)
	require.NoError(t, err)

	return shippingFixture{sellerID: sellerID, buyerID: buyerID, productID: productID, shipmentID: shipmentID}
}

func TestMarkReady(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusPending)

	shipment, err := svc.MarkReady(ctx, fx.sellerID, fx.shipmentID, "FastCourier", "TRK-001")
	require.NoError(t, err)

	assert.Equal(t, domain.ShipmentStatusReady, shipment.Status)
	require.NotNil(t, shipment.CourierName)
	assert.Equal(t, "FastCourier", *shipment.CourierName)
	assert.Equal(t, "READY", testutil.GetShipmentStatus(t, db, fx.shipmentID))

	// Buyer notification is queued in the same transaction.
	assert.Equal(t, 1, testutil.CountNotifications(t, db, string(domain.NotificationKindShippingInTransit)))
}

func TestMarkReady_RequiresCourierAndTracking(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusPending)

	_, err := svc.MarkReady(ctx, fx.sellerID, fx.shipmentID, "", "TRK-001")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.MarkReady(ctx, fx.sellerID, fx.shipmentID, "FastCourier", "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	assert.Equal(t, "PENDING", testutil.GetShipmentStatus(t, db, fx.shipmentID))
}

func TestMarkReady_NotSeller(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusPending)

	intruder := testutil.SeedUser(t, db, "other@test.com", "Other")
	_, err := svc.MarkReady(ctx, intruder, fx.shipmentID, "FastCourier", "TRK-001")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, "PENDING", testutil.GetShipmentStatus(t, db, fx.shipmentID))
}

func TestMarkReady_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusPending)

	_, err := svc.MarkReady(ctx, fx.sellerID, uuid.New(), "FastCourier", "TRK-001")
	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
}

func TestMarkReady_AlreadyReady(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusPending)

	_, err := svc.MarkReady(ctx, fx.sellerID, fx.shipmentID, "FastCourier", "TRK-001")
	require.NoError(t, err)

	_, err = svc.MarkReady(ctx, fx.sellerID, fx.shipmentID, "FastCourier", "TRK-001")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdvanceStatus_ForwardOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusReady)

	// Skipping SHIPPED is rejected.
	_, err := svc.AdvanceStatus(ctx, fx.sellerID, fx.shipmentID, domain.ShipmentStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	shipment, err := svc.AdvanceStatus(ctx, fx.sellerID, fx.shipmentID, domain.ShipmentStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentStatusShipped, shipment.Status)

	shipment, err = svc.AdvanceStatus(ctx, fx.sellerID, fx.shipmentID, domain.ShipmentStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentStatusDelivered, shipment.Status)

	// DELIVERED is terminal.
	_, err = svc.AdvanceStatus(ctx, fx.sellerID, fx.shipmentID, domain.ShipmentStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdvanceStatus_RejectsNonForwardTargets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := setupShippingTest(t, db)
	fx := seedShipment(t, db, domain.ShipmentStatusShipped)

	_, err := svc.AdvanceStatus(ctx, fx.sellerID, fx.shipmentID, domain.ShipmentStatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.AdvanceStatus(ctx, fx.sellerID, fx.shipmentID, domain.ShipmentStatusReady)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
