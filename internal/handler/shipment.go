package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/auth"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
)

type shippingService interface {
	MarkReady(ctx context.Context, sellerUserID, shipmentID uuid.UUID, courierName, trackingNumber string) (*domain.Shipment, error)
	AdvanceStatus(ctx context.Context, sellerUserID, shipmentID uuid.UUID, next domain.ShipmentStatus) (*domain.Shipment, error)
}

type shipmentLister interface {
	GetByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]domain.Shipment, error)
}

type ShipmentHandler struct {
	shipping  shippingService
	shipments shipmentLister
}

func NewShipmentHandler(shipping shippingService, shipments shipmentLister) *ShipmentHandler {
	return &ShipmentHandler{shipping: shipping, shipments: shipments}
}

type shipmentDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int       `json:"quantity"`
	Status         string    `json:"status"`
	CourierName    *string   `json:"courier_name"`
	TrackingNumber *string   `json:"tracking_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toShipmentDTO(s *domain.Shipment) shipmentDTO {
	return shipmentDTO{
		ID:             s.ID,
		ProductID:      s.ProductID,
		Quantity:       s.Quantity,
		Status:         string(s.Status),
		CourierName:    s.CourierName,
		TrackingNumber: s.TrackingNumber,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type markReadyRequest struct {
	CourierName    string `json:"courier_name"`
	TrackingNumber string `json:"tracking_number"`
}

func (r markReadyRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CourierName == "" {
		errs = append(errs, FieldError{Field: "courier_name", Message: "required"})
	}
	if r.TrackingNumber == "" {
		errs = append(errs, FieldError{Field: "tracking_number", Message: "required"})
	}
	return errs
}

// MarkReady is the seller's PENDING -> READY call; courier and tracking
// must arrive together.
func (h *ShipmentHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	shipmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req markReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	shipment, err := h.shipping.MarkReady(r.Context(), sellerID, shipmentID, req.CourierName, req.TrackingNumber)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to mark shipment ready", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toShipmentDTO(shipment))
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

func (r advanceStatusRequest) Validate() []FieldError {
	var errs []FieldError
	switch domain.ShipmentStatus(r.Status) {
	case domain.ShipmentStatusShipped, domain.ShipmentStatusDelivered:
	default:
		errs = append(errs, FieldError{Field: "status", Message: "must be SHIPPED or DELIVERED"})
	}
	return errs
}

func (h *ShipmentHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	shipmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req advanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	shipment, err := h.shipping.AdvanceStatus(r.Context(), sellerID, shipmentID, domain.ShipmentStatus(req.Status))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to advance shipment status", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toShipmentDTO(shipment))
}

// List returns the caller's shipments as a buyer.
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	shipments, err := h.shipments.GetByBuyerID(r.Context(), buyerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list shipments", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]shipmentDTO, len(shipments))
	for i := range shipments {
		dtos[i] = toShipmentDTO(&shipments[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
