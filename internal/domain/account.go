package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account holds one user's monetary balance in minor units (cents).
// Exactly one account exists per user, created together with the user.
// Version guards balance writes: every update must carry the version it
// read, so a lost update fails with ErrVersionConflict instead of
// silently overwriting a concurrent change.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   int64
	Version   int64
	CreatedAt time.Time
}
