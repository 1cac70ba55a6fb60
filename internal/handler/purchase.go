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
	"github.com/hyunwoo-dev/elkmart/internal/service/purchase"
)

type purchaseService interface {
	Purchase(ctx context.Context, req purchase.Request) (*purchase.Confirmation, error)
}

type PurchaseHandler struct {
	purchases purchaseService
}

func NewPurchaseHandler(purchases purchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

type purchaseRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r purchaseRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ProductID == "" {
		errs = append(errs, FieldError{Field: "product_id", Message: "required"})
	} else if _, err := uuid.Parse(r.ProductID); err != nil {
		errs = append(errs, FieldError{Field: "product_id", Message: "must be a UUID"})
	}
	if r.Quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "must be greater than zero"})
	}
	return errs
}

type purchaseResponse struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	Amount         string    `json:"amount"`
	BalanceAfter   string    `json:"balance_after"`
	ShipmentStatus string    `json:"shipment_status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	productID, _ := uuid.Parse(req.ProductID)
	conf, err := h.purchases.Purchase(r.Context(), purchase.Request{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("purchase failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, purchaseResponse{
		ShipmentID:     conf.Shipment.ID,
		ProductName:    conf.ProductName,
		Quantity:       conf.Shipment.Quantity,
		Amount:         domain.FormatAmount(conf.Amount),
		BalanceAfter:   domain.FormatAmount(conf.LedgerEntry.BalanceAfter),
		ShipmentStatus: string(conf.Shipment.Status),
		CreatedAt:      conf.Shipment.CreatedAt,
	})
}
