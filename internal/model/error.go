package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Error codes for the remote API failure kinds.
const (
	ErrCodeAuthContractViolation = "AUTH_CONTRACT_VIOLATION"
	ErrCodeCodeAlreadyRegistered = "CODE_ALREADY_REGISTERED"
	ErrCodeProductNotFound       = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound         = "ORDER_NOT_FOUND"
	ErrCodeProductAlreadyTaken   = "PRODUCT_ALREADY_TAKEN"
	ErrCodeUnknownNetwork        = "UNKNOWN_NETWORK_ERROR"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeUnauthorised          = "UNAUTHORIZED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// DomainError is a failure with a stable code. Two domain errors match with
// errors.Is when their codes are equal, so callers compare against the
// sentinels below regardless of the message.
type DomainError struct {
	Code    string
	Message string
	// Status and Body hold the raw remote response, when there was one.
	Status int
	Body   string
	cause  error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a domain error with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrAuthContractViolation = NewDomainError(ErrCodeAuthContractViolation, "The access_token key is not present on Authorization response.")
	ErrCodeAlreadyRegistered = NewDomainError(ErrCodeCodeAlreadyRegistered, "Code is already in use by another product.")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "Product not found.")
	ErrOrderNotFound         = NewDomainError(ErrCodeOrderNotFound, "No orders registered yet!")
	ErrProductAlreadyTaken   = NewDomainError(ErrCodeProductAlreadyTaken, "Product is already taken.")
	ErrUnknownNetwork        = NewDomainError(ErrCodeUnknownNetwork, "Unknown network error.")
	ErrInvalidInput          = NewDomainError(ErrCodeInvalidInput, "Invalid input.")
)

// NewAuthContractViolation reports an auth response without an access token.
func NewAuthContractViolation() *DomainError {
	return NewDomainError(ErrCodeAuthContractViolation, ErrAuthContractViolation.Message)
}

// NewCodeAlreadyRegistered reports a product code uniqueness conflict.
func NewCodeAlreadyRegistered(code string) *DomainError {
	return NewDomainError(ErrCodeCodeAlreadyRegistered,
		fmt.Sprintf("%s is already in use by another product.", code))
}

// NewProductNotFound reports a missing product. An empty uuid means the
// listing itself came back empty.
func NewProductNotFound(uuid string) *DomainError {
	if uuid == "" {
		return NewDomainError(ErrCodeProductNotFound, "No product registered yet!")
	}
	return NewDomainError(ErrCodeProductNotFound,
		fmt.Sprintf("Product with uuid %s not found.", uuid))
}

// NewOrderNotFound reports an empty order listing.
func NewOrderNotFound() *DomainError {
	return NewDomainError(ErrCodeOrderNotFound, ErrOrderNotFound.Message)
}

// NewProductAlreadyTaken reports a removal rejected because the product was redeemed.
func NewProductAlreadyTaken(uuid string) *DomainError {
	return NewDomainError(ErrCodeProductAlreadyTaken,
		fmt.Sprintf("Cannot delete the product %s, because it is already taken.", uuid))
}

// NewUnknownNetworkError reports an unexpected remote status. action reads as
// "add a product", "list the orders" and so on.
func NewUnknownNetworkError(action string, status int, body string) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnknownNetwork,
		Message: fmt.Sprintf("Failed to %s, network error: (status: %d - data: %s).", action, status, body),
		Status:  status,
		Body:    body,
	}
}

// NewTransportError reports a request that never produced a usable response.
func NewTransportError(action string, status int, cause error) *DomainError {
	return &DomainError{
		Code:    ErrCodeUnknownNetwork,
		Message: fmt.Sprintf("Failed to %s, network error: %v.", action, cause),
		Status:  status,
		cause:   cause,
	}
}

// NewInvalidInput reports input rejected before any request was sent.
func NewInvalidInput(message string, cause error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidInput,
		Message: message,
		cause:   cause,
	}
}
