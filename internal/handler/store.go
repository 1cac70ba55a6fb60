package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hyunwoo-dev/elkmart/internal/auth"
	"github.com/hyunwoo-dev/elkmart/internal/domain"
	"github.com/hyunwoo-dev/elkmart/internal/logging"
	"github.com/hyunwoo-dev/elkmart/internal/service"
)

type catalogService interface {
	CreateStore(ctx context.Context, req service.CreateStoreRequest) (*domain.Store, error)
	CreateProducts(ctx context.Context, userID uuid.UUID, items []service.NewProduct) ([]domain.Product, error)
}

type StoreHandler struct {
	catalog catalogService
}

func NewStoreHandler(catalog catalogService) *StoreHandler {
	return &StoreHandler{catalog: catalog}
}

type createStoreRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	BusinessNumber string `json:"business_number"`
	OwnerName      string `json:"owner_name"`
	PhoneNumber    string `json:"phone_number"`
}

func (r createStoreRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.BusinessNumber == "" {
		errs = append(errs, FieldError{Field: "business_number", Message: "required"})
	}
	if r.OwnerName == "" {
		errs = append(errs, FieldError{Field: "owner_name", Message: "required"})
	}
	return errs
}

type storeDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	store, err := h.catalog.CreateStore(r.Context(), service.CreateStoreRequest{
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		BusinessNumber: req.BusinessNumber,
		OwnerName:      req.OwnerName,
		PhoneNumber:    req.PhoneNumber,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create store", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, storeDTO{
		ID:        store.ID,
		Name:      store.Name,
		OwnerName: store.OwnerName,
		CreatedAt: store.CreatedAt,
	})
}

type newProductRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category"`
	Price       string  `json:"price"`
	ImageURL    *string `json:"image_url"`
	Description *string `json:"description"`
}

type createProductsRequest struct {
	Products []newProductRequest `json:"products"`
}

func (r createProductsRequest) Validate() []FieldError {
	var errs []FieldError
	if len(r.Products) == 0 {
		errs = append(errs, FieldError{Field: "products", Message: "at least one product required"})
	}
	for i, p := range r.Products {
		if p.Name == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("products[%d].name", i), Message: "required"})
		}
		if p.Price == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("products[%d].price", i), Message: "required"})
		}
	}
	return errs
}

type productDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *StoreHandler) CreateProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	items := make([]service.NewProduct, 0, len(req.Products))
	for _, p := range req.Products {
		price, err := domain.ParseAmount(p.Price)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		items = append(items, service.NewProduct{
			Name:        p.Name,
			Category:    p.Category,
			SubCategory: p.SubCategory,
			Price:       price,
			ImageURL:    p.ImageURL,
			Description: p.Description,
		})
	}

	products, err := h.catalog.CreateProducts(r.Context(), userID, items)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create products", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]productDTO, len(products))
	for i, p := range products {
		dtos[i] = productDTO{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			SubCategory: p.SubCategory,
			Price:       domain.FormatAmount(p.Price),
			CreatedAt:   p.CreatedAt,
		}
	}

	RespondSuccess(w, http.StatusCreated, dtos)
}
