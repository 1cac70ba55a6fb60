package purchase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/repository"
)

type stubUsers struct {
	user *domain.User
	err  error
}

func (s *stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.user, s.err
}

type stubProducts struct {
	product *domain.Product
	seller  *repository.SellerInfo
	err     error
}

func (s *stubProducts) GetWithSeller(ctx context.Context, id uuid.UUID) (*domain.Product, *repository.SellerInfo, error) {
	return s.product, s.seller, s.err
}

func TestResolve_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, nil, nil)

	for _, qty := range []int{0, -1} {
		_, _, _, _, err := svc.resolve(context.Background(), Request{
			BuyerID:   uuid.New(),
			ProductID: uuid.New(),
			Quantity:  qty,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "quantity %d", qty)
	}
}

func TestResolve_BuyerNotFound(t *testing.T) {
	svc := NewService(&stubUsers{err: domain.ErrNotFound}, nil, nil, nil, nil, nil)

	_, _, _, _, err := svc.resolve(context.Background(), Request{
		BuyerID:   uuid.New(),
		ProductID: uuid.New(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrBuyerNotFound)
}

func TestResolve_ProductNotFound(t *testing.T) {
	buyer := &domain.User{ID: uuid.New(), Email: "buyer@test.com", Name: "Buyer"}
	svc := NewService(
		&stubUsers{user: buyer},
		&stubProducts{err: domain.ErrProductNotFound},
		nil, nil, nil, nil,
	)

	_, _, _, _, err := svc.resolve(context.Background(), Request{
		BuyerID:   buyer.ID,
		ProductID: uuid.New(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestResolve_ComputesAmount(t *testing.T) {
	buyer := &domain.User{ID: uuid.New(), Email: "buyer@test.com", Name: "Buyer"}
	product := &domain.Product{ID: uuid.New(), Name: "Keyboard", Price: 50_000}
	seller := &repository.SellerInfo{SellerID: uuid.New(), SellerName: "Seller", SellerEmail: "seller@test.com"}

	svc := NewService(
		&stubUsers{user: buyer},
		&stubProducts{product: product, seller: seller},
		nil, nil, nil, nil,
	)

	_, _, _, amount, err := svc.resolve(context.Background(), Request{
		BuyerID:   buyer.ID,
		ProductID: product.ID,
		Quantity:  3,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(150_000), amount)
}

func TestResolve_AmountOverflow(t *testing.T) {
	buyer := &domain.User{ID: uuid.New()}
	product := &domain.Product{ID: uuid.New(), Price: 1 << 62}
	seller := &repository.SellerInfo{}

	svc := NewService(
		&stubUsers{user: buyer},
		&stubProducts{product: product, seller: seller},
		nil, nil, nil, nil,
	)

	_, _, _, _, err := svc.resolve(context.Background(), Request{
		BuyerID:   buyer.ID,
		ProductID: product.ID,
		Quantity:  1000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
