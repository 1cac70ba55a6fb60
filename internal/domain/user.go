package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Birthdate    *time.Time
	CreatedAt    time.Time
}

// RefreshToken is the persisted half of a login session. Deleting the
// row invalidates the session; access tokens expire on their own.
type RefreshToken struct {
	UserID    uuid.UUID
	Token     string
	CreatedAt time.Time
}
