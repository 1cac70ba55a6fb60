package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrForbidden          = &AppError{http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInsufficientFunds = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrAccountNotFound   = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrBuyerNotFound     = &AppError{http.StatusUnprocessableEntity, "BUYER_NOT_FOUND", "Buyer not found"}
	ErrProductNotFound   = &AppError{http.StatusUnprocessableEntity, "PRODUCT_NOT_FOUND", "Product not found"}
	ErrShipmentNotFound  = &AppError{http.StatusNotFound, "SHIPMENT_NOT_FOUND", "Shipment not found"}
	ErrInvalidTransition = &AppError{http.StatusConflict, "INVALID_TRANSITION", "Shipment status cannot move there from its current state"}
	ErrVersionConflict   = &AppError{http.StatusConflict, "CONCURRENCY_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrEmailTaken        = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email is already registered"}
	ErrStoreExists       = &AppError{http.StatusConflict, "STORE_ALREADY_EXISTS", "A store already exists for this user"}
	ErrStoreNameTaken    = &AppError{http.StatusConflict, "STORE_NAME_TAKEN", "Store name is already in use"}
	ErrTooManyProducts   = &AppError{http.StatusBadRequest, "TOO_MANY_PRODUCTS", "At most 5 products can be registered at once"}
	ErrInvalidAmount     = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be a positive value with at most two decimal places"}
	ErrInvalidQuantity   = &AppError{http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be greater than zero"}

	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
