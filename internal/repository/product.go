package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
)

const productColumns = `id, store_id, name, category, sub_category, price, image_url, description, created_at`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateBatch(ctx context.Context, products []domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateBatch: begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range products {
		p := &products[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, store_id, name, category, sub_category, price, image_url, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.StoreID, p.Name, p.Category, p.SubCategory,
			p.Price, p.ImageURL, p.Description, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("CreateBatch: insert %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("CreateBatch: commit: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id,
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrProductNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

// SellerInfo is the slice of store/owner data the purchase and
// shipping flows need alongside a product.
type SellerInfo struct {
	StoreID     uuid.UUID
	StoreName   string
	SellerID    uuid.UUID
	SellerName  string
	SellerEmail string
}

// GetWithSeller resolves a product together with its owning store and
// the store's owner. A product whose store or owner row is missing is
// reported as ErrProductNotFound, the same as an absent product.
func (r *ProductRepository) GetWithSeller(ctx context.Context, id uuid.UUID) (*domain.Product, *SellerInfo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.store_id, p.name, p.category, p.sub_category, p.price, p.image_url, p.description, p.created_at,
			s.id, s.name, u.id, u.name, u.email
		FROM products p
		JOIN stores s ON s.id = p.store_id
		JOIN users u ON u.id = s.user_id
		WHERE p.id = $1`, id,
	)

	var p domain.Product
	var info SellerInfo
	err := row.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Category, &p.SubCategory,
		&p.Price, &p.ImageURL, &p.Description, &p.CreatedAt,
		&info.StoreID, &info.StoreName, &info.SellerID, &info.SellerName, &info.SellerEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("GetWithSeller: %w", domain.ErrProductNotFound)
		}
		return nil, nil, fmt.Errorf("GetWithSeller: %w", err)
	}
	return &p, &info, nil
}

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	err := s.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Category, &p.SubCategory,
		&p.Price, &p.ImageURL, &p.Description, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
