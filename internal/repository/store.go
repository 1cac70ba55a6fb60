package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
)

const storeColumns = `id, user_id, name, description, business_number, owner_name, phone_number, created_at`

type StoreRepository struct {
	db *sql.DB
}

func NewStoreRepository(db *sql.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) Create(ctx context.Context, store *domain.Store) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stores (id, user_id, name, description, business_number, owner_name, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		store.ID, store.UserID, store.Name, store.Description,
		store.BusinessNumber, store.OwnerName, store.PhoneNumber, store.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *StoreRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Store, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE user_id = $1`, userID,
	)
	s, err := scanStore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByUserID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	return s, nil
}

func (r *StoreRepository) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE name = $1`, name,
	)
	s, err := scanStore(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByName: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByName: %w", err)
	}
	return s, nil
}

func scanStore(s scanner) (*domain.Store, error) {
	var st domain.Store
	err := s.Scan(
		&st.ID, &st.UserID, &st.Name, &st.Description,
		&st.BusinessNumber, &st.OwnerName, &st.PhoneNumber, &st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
