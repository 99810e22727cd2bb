package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Available *int   `json:"available,omitempty"`
	Requested *int   `json:"requested,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidParameter   = "INVALID_PARAMETER"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeEmptyOrder         = "EMPTY_ORDER"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeCompensationFailed = "COMPENSATION_FAILED"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyOrder          = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrMissingCustomerName = NewDomainError(ErrCodeMissingField, "Customer name is required")
	ErrMissingProductID    = NewDomainError(ErrCodeMissingField, "Product ID is required")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidStatus       = NewDomainError(ErrCodeInvalidStatus, "Status must be one of Pending, Processing, Completed, Cancelled")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Status transition not allowed")
	ErrCompensationFailed  = NewDomainError(ErrCodeCompensationFailed, "Failed to restore reserved stock")
)

// ProductNotFoundError reports which product of a request does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// Is makes errors.Is(err, ErrProductNotFound) hold.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// InsufficientStockError reports the shortfall for a single product.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidTransitionError reports a status change the lifecycle forbids.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// Is makes errors.Is(err, ErrInvalidTransition) hold.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ErrorCode returns the API error code carried by err, or ErrCodeInternalError
// when err is not a domain error.
func ErrorCode(err error) string {
	var domainErr *DomainError
	switch {
	case errors.Is(err, ErrCompensationFailed):
		return ErrCodeCompensationFailed
	case errors.Is(err, ErrProductNotFound):
		return ErrCodeProductNotFound
	case errors.Is(err, ErrInsufficientStock):
		return ErrCodeInsufficientStock
	case errors.Is(err, ErrInvalidTransition):
		return ErrCodeInvalidTransition
	case errors.As(err, &domainErr):
		return domainErr.Code
	default:
		return ErrCodeInternalError
	}
}
