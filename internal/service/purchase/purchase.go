package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
	"github.com/hyunwoo-dev/elkmart/internal/metrics"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
)

const maxConflictRetries = 3

type Request struct {
	BuyerID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

type Confirmation struct {
	LedgerEntry *domain.LedgerEntry
	Shipment    *domain.Shipment
	ProductName string
	Amount      int64
}

// Purchase debits the buyer, appends the PAYMENT ledger entry, creates
// the PENDING shipment and queues the buyer/seller notifications in a
// single transaction. Any failure before commit leaves no trace; money
// is never taken without a shipment obligation existing.
func (s *Service) Purchase(ctx context.Context, req Request) (*Confirmation, error) {
	buyer, product, seller, amount, err := s.resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Purchase: %w", err)
	}

	var conf *Confirmation
	for attempt := 1; ; attempt++ {
		conf, err = s.execute(ctx, req, buyer, product, seller, amount)
		if !errors.Is(err, domain.ErrVersionConflict) {
			break
		}
		if attempt >= maxConflictRetries {
			break
		}
		logging.FromContext(ctx).Warn("purchase debit conflict, retrying",
			"buyer_id", req.BuyerID,
			"attempt", attempt,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("Purchase: %w", err)
	}

	metrics.Purchases.Inc()
	logging.FromContext(ctx).Info("purchase completed",
		"buyer_id", buyer.ID,
		"product_id", product.ID,
		"quantity", req.Quantity,
		"amount", amount,
		"shipment_id", conf.Shipment.ID,
	)
	return conf, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (*domain.User, *domain.Product, *repository.SellerInfo, int64, error) {
	if req.Quantity <= 0 {
		return nil, nil, nil, 0, fmt.Errorf("resolve: %w", domain.ErrInvalidQuantity)
	}

	buyer, err := s.users.GetByID(ctx, req.BuyerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, 0, fmt.Errorf("resolve: %w", domain.ErrBuyerNotFound)
		}
		return nil, nil, nil, 0, fmt.Errorf("resolve: %w", err)
	}

	product, seller, err := s.products.GetWithSeller(ctx, req.ProductID)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("resolve: %w", err)
	}

	if product.Price <= 0 {
		return nil, nil, nil, 0, fmt.Errorf("resolve: non-positive price: %w", domain.ErrInvalidRequest)
	}
	if product.Price > math.MaxInt64/int64(req.Quantity) {
		return nil, nil, nil, 0, fmt.Errorf("resolve: amount overflow: %w", domain.ErrInvalidRequest)
	}

	return buyer, product, seller, product.Price * int64(req.Quantity), nil
}

func (s *Service) execute(ctx context.Context, req Request, buyer *domain.User, product *domain.Product, seller *repository.SellerInfo, amount int64) (*Confirmation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("execute: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	entry, err := s.accounts.DebitForPurchase(ctx, tx, buyer.ID, amount, now)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	shipment := &domain.Shipment{
		ID:        uuid.New(),
		ProductID: product.ID,
		BuyerID:   buyer.ID,
		Quantity:  req.Quantity,
		Status:    domain.ShipmentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.shipments.Create(ctx, tx, shipment); err != nil {
		return nil, fmt.Errorf("execute: create shipment: %w", err)
	}

	if err := s.queueNotifications(ctx, tx, req, buyer, product, seller, amount, now); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("execute: commit: %w", err)
	}

	return &Confirmation{
		LedgerEntry: entry,
		Shipment:    shipment,
		ProductName: product.Name,
		Amount:      amount,
	}, nil
}

// queueNotifications writes the buyer confirmation and the seller's
// ship-it request to the outbox inside the purchase transaction, so a
// committed purchase always has its notifications queued.
func (s *Service) queueNotifications(ctx context.Context, tx *sql.Tx, req Request, buyer *domain.User, product *domain.Product, seller *repository.SellerInfo, amount int64, now time.Time) error {
	confirmed, err := domain.NewNotification(
		domain.NotificationKindPurchaseConfirmed,
		buyer.Email,
		domain.PurchaseConfirmedPayload{
			BuyerName:   buyer.Name,
			ProductName: product.Name,
			Quantity:    req.Quantity,
			Amount:      domain.FormatAmount(amount),
		},
		now,
	)
	if err != nil {
		return fmt.Errorf("queueNotifications: %w", err)
	}
	if err := s.outbox.Create(ctx, tx, confirmed); err != nil {
		return fmt.Errorf("queueNotifications: buyer confirmation: %w", err)
	}

	requested, err := domain.NewNotification(
		domain.NotificationKindShippingRequested,
		seller.SellerEmail,
		domain.ShippingRequestedPayload{
			SellerName:  seller.SellerName,
			BuyerName:   buyer.Name,
			ProductName: product.Name,
			Quantity:    req.Quantity,
		},
		now,
	)
	if err != nil {
		return fmt.Errorf("queueNotifications: %w", err)
	}
	if err := s.outbox.Create(ctx, tx, requested); err != nil {
		return fmt.Errorf("queueNotifications: seller request: %w", err)
	}
	return nil
}
