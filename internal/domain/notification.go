package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationKindPurchaseConfirmed NotificationKind = "purchase.confirmed"
	NotificationKindShippingRequested NotificationKind = "shipping.requested"
	NotificationKindShippingInTransit NotificationKind = "shipping.in_transit"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is an outbox row. It is written in the same transaction
// as the business change it announces and drained by the dispatcher
// afterwards, so delivery can fail or lag without touching money.
type Notification struct {
	ID            uuid.UUID
	Kind          NotificationKind
	Recipient     string
	Payload       json.RawMessage
	Status        NotificationStatus
	Attempts      int
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

type PurchaseConfirmedPayload struct {
	BuyerName   string `json:"buyer_name"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Amount      string `json:"amount"`
}

type ShippingRequestedPayload struct {
	SellerName  string `json:"seller_name"`
	BuyerName   string `json:"buyer_name"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type ShippingInTransitPayload struct {
	BuyerName      string `json:"buyer_name"`
	ProductName    string `json:"product_name"`
	CourierName    string `json:"courier_name"`
	TrackingNumber string `json:"tracking_number"`
}

func NewNotification(kind NotificationKind, recipient string, payload any, now time.Time) (*Notification, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("NewNotification: marshal: %w", err)
	}
	return &Notification{
		ID:            uuid.New(),
		Kind:          kind,
		Recipient:     recipient,
		Payload:       body,
		Status:        NotificationStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}
