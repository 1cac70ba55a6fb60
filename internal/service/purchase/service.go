package purchase

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type productRepo interface {
	GetWithSeller(ctx context.Context, id uuid.UUID) (*domain.Product, *repository.SellerInfo, error)
}

type accountDebitor interface {
	DebitForPurchase(ctx context.Context, tx *sql.Tx, userID uuid.UUID, amount int64, occurredOn time.Time) (*domain.LedgerEntry, error)
}

type shipmentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, shipment *domain.Shipment) error
}

type outboxRepo interface {
	Create(ctx context.Context, tx *sql.Tx, n *domain.Notification) error
}

// Service turns a buy request into a debit, a ledger entry, a pending
// shipment and the queued notifications, committed as one unit.
type Service struct {
	users     userRepo
	products  productRepo
	accounts  accountDebitor
	shipments shipmentRepo
	outbox    outboxRepo
	db        *sql.DB
}

func NewService(
	users userRepo,
	products productRepo,
	accounts accountDebitor,
	shipments shipmentRepo,
	outbox outboxRepo,
	db *sql.DB,
) *Service {
	return &Service{
		users:     users,
		products:  products,
		accounts:  accounts,
		shipments: shipments,
		outbox:    outbox,
		db:        db,
	}
}
