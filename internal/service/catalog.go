package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
)

const maxProductsPerBatch = 5

// CatalogService covers the seller-facing store and product surface.
// Products are read-only to the purchase flow; nothing here touches
// balances.
type CatalogService struct {
	stores   storeRepository
	products productRepository
	users    userRepository
}

func NewCatalogService(stores storeRepository, products productRepository, users userRepository) *CatalogService {
	return &CatalogService{stores: stores, products: products, users: users}
}

type CreateStoreRequest struct {
	UserID         uuid.UUID
	Name           string
	Description    string
	BusinessNumber string
	OwnerName      string
	PhoneNumber    string
}

func (s *CatalogService) CreateStore(ctx context.Context, req CreateStoreRequest) (*domain.Store, error) {
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("CreateStore: %w", err)
	}

	if _, err := s.stores.GetByUserID(ctx, req.UserID); err == nil {
		return nil, fmt.Errorf("CreateStore: %w", domain.ErrStoreExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("CreateStore: check existing: %w", err)
	}

	if _, err := s.stores.GetByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("CreateStore: %w", domain.ErrStoreNameTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("CreateStore: check name: %w", err)
	}

	store := &domain.Store{
		ID:             uuid.New(),
		UserID:         req.UserID,
		Name:           req.Name,
		Description:    req.Description,
		BusinessNumber: req.BusinessNumber,
		OwnerName:      req.OwnerName,
		PhoneNumber:    req.PhoneNumber,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("CreateStore: %w", err)
	}

	logging.FromContext(ctx).Info("store created", "store_id", store.ID, "user_id", req.UserID)
	return store, nil
}

type NewProduct struct {
	Name        string
	Category    string
	SubCategory string
	Price       int64
	ImageURL    *string
	Description *string
}

// CreateProducts registers up to five products under the caller's
// store.
func (s *CatalogService) CreateProducts(ctx context.Context, userID uuid.UUID, items []NewProduct) ([]domain.Product, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("CreateProducts: %w", domain.ErrInvalidRequest)
	}
	if len(items) > maxProductsPerBatch {
		return nil, fmt.Errorf("CreateProducts: %w", domain.ErrTooManyProducts)
	}

	store, err := s.stores.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("CreateProducts: %w", err)
	}

	now := time.Now().UTC()
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item.Price <= 0 {
			return nil, fmt.Errorf("CreateProducts: product %q: %w", item.Name, domain.ErrInvalidAmount)
		}
		products = append(products, domain.Product{
			ID:          uuid.New(),
			StoreID:     store.ID,
			Name:        item.Name,
			Category:    item.Category,
			SubCategory: item.SubCategory,
			Price:       item.Price,
			ImageURL:    item.ImageURL,
			Description: item.Description,
			CreatedAt:   now,
		})
	}

	if err := s.products.CreateBatch(ctx, products); err != nil {
		return nil, fmt.Errorf("CreateProducts: %w", err)
	}

	logging.FromContext(ctx).Info("products created", "store_id", store.ID, "count", len(products))
	return products, nil
}
