package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
)

const shipmentColumns = `id, product_id, buyer_id, quantity, status, courier_name, tracking_number, created_at, updated_at`

type ShipmentRepository struct {
	db *sql.DB
}

func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, tx *sql.Tx, shipment *domain.Shipment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO shipments (id, product_id, buyer_id, quantity, status, courier_name, tracking_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		shipment.ID, shipment.ProductID, shipment.BuyerID, shipment.Quantity,
		shipment.Status, shipment.CourierName, shipment.TrackingNumber,
		shipment.CreatedAt, shipment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id,
	)
	sh, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrShipmentNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return sh, nil
}

// GetForUpdate locks the shipment row so a status transition is checked
// and written against the same snapshot.
func (r *ShipmentRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Shipment, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1 FOR UPDATE`, id,
	)
	sh, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrShipmentNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return sh, nil
}

func (r *ShipmentRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.ShipmentStatus, courierName, trackingNumber *string, updatedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE shipments
		SET status = $1,
			courier_name = COALESCE($2, courier_name),
			tracking_number = COALESCE($3, tracking_number),
			updated_at = $4
		WHERE id = $5`,
		status, courierName, trackingNumber, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrShipmentNotFound)
	}
	return nil
}

func (r *ShipmentRepository) GetByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]domain.Shipment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByBuyerID: %w", err)
	}
	defer rows.Close()

	var shipments []domain.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByBuyerID: scan: %w", err)
		}
		shipments = append(shipments, *sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByBuyerID: rows: %w", err)
	}
	return shipments, nil
}

func scanShipment(s scanner) (*domain.Shipment, error) {
	var sh domain.Shipment
	err := s.Scan(
		&sh.ID, &sh.ProductID, &sh.BuyerID, &sh.Quantity, &sh.Status,
		&sh.CourierName, &sh.TrackingNumber, &sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}
