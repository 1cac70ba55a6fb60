package domain

import (
	"time"

	"github.com/google/uuid"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusReady     ShipmentStatus = "READY"
	ShipmentStatusShipped   ShipmentStatus = "SHIPPED"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	// Reserved; no transition into it exists yet.
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

// rank orders the forward-only lifecycle. CANCELLED sits outside it.
func (s ShipmentStatus) rank() int {
	switch s {
	case ShipmentStatusPending:
		return 0
	case ShipmentStatusReady:
		return 1
	case ShipmentStatusShipped:
		return 2
	case ShipmentStatusDelivered:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether a shipment may move from s to next.
// Only single forward steps are allowed; no regression, no skipping.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	from, to := s.rank(), next.rank()
	return from >= 0 && to >= 0 && to == from+1
}

func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusCancelled
}

// Shipment tracks physical fulfillment of one purchased product
// instance. Created PENDING by the purchase flow; mutated only by the
// seller owning the product's store.
type Shipment struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	BuyerID        uuid.UUID
	Quantity       int
	Status         ShipmentStatus
	CourierName    *string
	TrackingNumber *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
