// Package errs provides the typed error values shared by the storefront
// domain services. Every error here is an expected, recoverable condition
// that handlers translate into a client-facing response; infrastructure
// failures are wrapped with fmt.Errorf instead.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnavailable       = errors.New("unavailable")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("invalid status")
)

// NotFoundError indicates that a referenced object does not exist.
type NotFoundError struct {
	Kind string // "product", "cart", "order", "cart item", "tracking"
	ID   any
}

func NewNotFoundError(kind string, id any) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UnavailableError indicates a product exists but is not purchasable.
type UnavailableError struct {
	ProductName string
}

func NewUnavailableError(productName string) *UnavailableError {
	return &UnavailableError{ProductName: productName}
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available", e.ProductName)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// InsufficientStockError indicates the requested quantity exceeds the
// quantity currently in stock. Available carries the stock level observed
// when the request was rejected.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func NewInsufficientStockError(productName string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{ProductName: productName, Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// EmptyCartError indicates checkout was attempted on a cart with no lines.
type EmptyCartError struct {
	SessionID string
}

func NewEmptyCartError(sessionID string) *EmptyCartError {
	return &EmptyCartError{SessionID: sessionID}
}

func (e *EmptyCartError) Error() string {
	return fmt.Sprintf("cart for session %q is empty", e.SessionID)
}

func (e *EmptyCartError) Unwrap() error { return ErrEmptyCart }

// InvalidStatusError indicates an unrecognized status value was requested.
type InvalidStatusError struct {
	Value string
}

func NewInvalidStatusError(value string) *InvalidStatusError {
	return &InvalidStatusError{Value: value}
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status: %q", e.Value)
}

func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }
