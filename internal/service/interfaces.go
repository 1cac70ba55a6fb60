package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
)

type userRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SaveRefreshToken(ctx context.Context, tx *sql.Tx, token *domain.RefreshToken) error
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error
}

type accountRepository interface {
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	GetForUpdateByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance int64, newVersion int64) error
}

type ledgerRepository interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
}

type storeRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Store, error)
	GetByName(ctx context.Context, name string) (*domain.Store, error)
}

type productRepository interface {
	CreateBatch(ctx context.Context, products []domain.Product) error
	GetWithSeller(ctx context.Context, id uuid.UUID) (*domain.Product, *repository.SellerInfo, error)
}

type shipmentRepository interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Shipment, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.ShipmentStatus, courierName, trackingNumber *string, updatedAt time.Time) error
}

type outboxRepository interface {
	Create(ctx context.Context, tx *sql.Tx, n *domain.Notification) error
	GetDue(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Reschedule(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time) error
}
