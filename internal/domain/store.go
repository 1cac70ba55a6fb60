package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store is a seller's shop. One per user; the owning user is the
// seller identity for every product and shipment under it.
type Store struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Description    string
	BusinessNumber string
	OwnerName      string
	PhoneNumber    string
	CreatedAt      time.Time
}

type Product struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Name        string
	Category    string
	SubCategory string
	Price       int64
	ImageURL    *string
	Description *string
	CreatedAt   time.Time
}
