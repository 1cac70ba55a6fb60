package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
)

// ShippingService drives a shipment's forward-only lifecycle. Every
// transition is authorized against the seller owning the shipment's
// product and written under a row lock so concurrent updates cannot
// regress a status.
type ShippingService struct {
	shipments shipmentRepository
	products  productRepository
	users     userRepository
	outbox    outboxRepository
	db        *sql.DB
}

func NewShippingService(
	shipments shipmentRepository,
	products productRepository,
	users userRepository,
	outbox outboxRepository,
	db *sql.DB,
) *ShippingService {
	return &ShippingService{
		shipments: shipments,
		products:  products,
		users:     users,
		outbox:    outbox,
		db:        db,
	}
}

// MarkReady moves a PENDING shipment to READY, recording courier and
// tracking metadata. Both fields are required together. On commit a
// shipping-in-transit notification for the buyer is queued.
func (s *ShippingService) MarkReady(ctx context.Context, sellerUserID, shipmentID uuid.UUID, courierName, trackingNumber string) (*domain.Shipment, error) {
	if courierName == "" || trackingNumber == "" {
		return nil, fmt.Errorf("MarkReady: courier and tracking number required together: %w", domain.ErrInvalidRequest)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("MarkReady: begin tx: %w", err)
	}
	defer tx.Rollback()

	shipment, product, _, err := s.authorizeSeller(ctx, tx, sellerUserID, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("MarkReady: %w", err)
	}

	if !shipment.Status.CanTransitionTo(domain.ShipmentStatusReady) {
		return nil, fmt.Errorf("MarkReady: %s -> READY: %w", shipment.Status, domain.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	if err := s.shipments.UpdateStatus(ctx, tx, shipmentID, domain.ShipmentStatusReady, &courierName, &trackingNumber, now); err != nil {
		return nil, fmt.Errorf("MarkReady: %w", err)
	}

	buyer, err := s.users.GetByID(ctx, shipment.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("MarkReady: resolve buyer: %w", err)
	}

	notification, err := domain.NewNotification(
		domain.NotificationKindShippingInTransit,
		buyer.Email,
		domain.ShippingInTransitPayload{
			BuyerName:      buyer.Name,
			ProductName:    product.Name,
			CourierName:    courierName,
			TrackingNumber: trackingNumber,
		},
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("MarkReady: %w", err)
	}
	if err := s.outbox.Create(ctx, tx, notification); err != nil {
		return nil, fmt.Errorf("MarkReady: queue notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("MarkReady: commit: %w", err)
	}

	shipment.Status = domain.ShipmentStatusReady
	shipment.CourierName = &courierName
	shipment.TrackingNumber = &trackingNumber
	shipment.UpdatedAt = now

	logging.FromContext(ctx).Info("shipment marked ready",
		"shipment_id", shipmentID,
		"seller_id", sellerUserID,
		"courier", courierName,
	)
	return shipment, nil
}

// AdvanceStatus moves a shipment one step forward (READY -> SHIPPED,
// SHIPPED -> DELIVERED) under the same seller authorization.
func (s *ShippingService) AdvanceStatus(ctx context.Context, sellerUserID, shipmentID uuid.UUID, next domain.ShipmentStatus) (*domain.Shipment, error) {
	if next != domain.ShipmentStatusShipped && next != domain.ShipmentStatusDelivered {
		return nil, fmt.Errorf("AdvanceStatus: target %s: %w", next, domain.ErrInvalidRequest)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("AdvanceStatus: begin tx: %w", err)
	}
	defer tx.Rollback()

	shipment, _, _, err := s.authorizeSeller(ctx, tx, sellerUserID, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("AdvanceStatus: %w", err)
	}

	if !shipment.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("AdvanceStatus: %s -> %s: %w", shipment.Status, next, domain.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	if err := s.shipments.UpdateStatus(ctx, tx, shipmentID, next, nil, nil, now); err != nil {
		return nil, fmt.Errorf("AdvanceStatus: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("AdvanceStatus: commit: %w", err)
	}

	shipment.Status = next
	shipment.UpdatedAt = now

	logging.FromContext(ctx).Info("shipment status advanced",
		"shipment_id", shipmentID,
		"status", next,
	)
	return shipment, nil
}

// authorizeSeller locks the shipment and verifies the caller owns the
// store selling the shipment's product.
func (s *ShippingService) authorizeSeller(ctx context.Context, tx *sql.Tx, sellerUserID, shipmentID uuid.UUID) (*domain.Shipment, *domain.Product, *domain.User, error) {
	shipment, err := s.shipments.GetForUpdate(ctx, tx, shipmentID)
	if err != nil {
		return nil, nil, nil, err
	}

	product, sellerInfo, err := s.products.GetWithSeller(ctx, shipment.ProductID)
	if err != nil {
		return nil, nil, nil, err
	}

	if sellerInfo.SellerID != sellerUserID {
		return nil, nil, nil, fmt.Errorf("authorizeSeller: caller is not the product's seller: %w", domain.ErrForbidden)
	}

	seller := &domain.User{ID: sellerInfo.SellerID, Name: sellerInfo.SellerName, Email: sellerInfo.SellerEmail}
	return shipment, product, seller, nil
}
