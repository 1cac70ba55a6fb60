package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrBuyerNotFound     = errors.New("buyer not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid shipment status transition")
	ErrVersionConflict   = errors.New("optimistic lock conflict")
	ErrEmailTaken        = errors.New("email already registered")
	ErrStoreExists       = errors.New("user already owns a store")
	ErrStoreNameTaken    = errors.New("store name already in use")
	ErrTooManyProducts   = errors.New("at most 5 products per request")
)
