package models

import (
	"errors"
	"fmt"
)

var (
	ErrConflictData        = errors.New("data conflicts with existing data")
	ErrDataNotFound        = errors.New("data not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrDuplicateOrder      = errors.New("order already exists")
	ErrInvalidTransition   = errors.New("invalid order state transition")
	ErrVerificationTimeout = errors.New("payment verification timed out")
	ErrInvalidCredentials  = errors.New("invalid login or password")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrCheckoutUnavailable = errors.New("checkout is not available for order")
)

// ValidationError is user-correctable input error
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates new ValidationError
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IntegrityError means the reported payment amount differs from the registered one.
// The order is not completed and needs manual reconciliation.
type IntegrityError struct {
	MerchantOrderID string
	RecordedMinor   int64
	ReportedMinor   int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("amount mismatch for order %s: recorded %d, reported %d",
		e.MerchantOrderID, e.RecordedMinor, e.ReportedMinor)
}

// TransitionError wraps ErrInvalidTransition with the states involved
type TransitionError struct {
	MerchantOrderID string
	From            OrderState
	To              OrderState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot transition from %s to %s", e.MerchantOrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
