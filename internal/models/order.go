package models

import "time"

// OrderState is a donation order lifecycle state.
//
// CREATED: order registered locally, gateway not yet acknowledged it;
// PENDING: gateway order exists, payment outcome unknown;
// COMPLETED: payment settled;
// FAILED: payment failed or expired at the gateway;
// CANCELLED: donor abandoned the checkout or the order never reached the gateway.
type OrderState string

// order states
const (
	OrderStateCreated   OrderState = "CREATED"
	OrderStatePending   OrderState = "PENDING"
	OrderStateCompleted OrderState = "COMPLETED"
	OrderStateFailed    OrderState = "FAILED"
	OrderStateCancelled OrderState = "CANCELLED"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderState) IsTerminal() bool {
	switch s {
	case OrderStateCompleted, OrderStateFailed, OrderStateCancelled:
		return true
	}
	return false
}

// DonorInfo is captured when the donation starts and never changes.
type DonorInfo struct {
	FullName string `validate:"required,max=200"`
	Email    string `validate:"required,email,max=254"`
	Phone    string `validate:"omitempty,max=20"`
	Message  string `validate:"max=2000"`
}

// Order is donation order entity
type Order struct {
	MerchantOrderID string
	GatewayOrderID  string
	AmountMinor     int64
	State           OrderState
	Donor           DonorInfo
	CheckoutURL     string
	ExpiresAt       *time.Time
	TransactionID   string
	PaymentMode     string
	Notified        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

// Completion is a settled payment as reported by a notification path.
type Completion struct {
	AmountMinor   int64
	TransactionID string
	PaymentMode   string
}

// TransitionResult is returned by every guarded store transition.
// Applied is true only for the caller whose call changed the state.
type TransitionResult struct {
	Applied bool
	Order   *Order
}

// Checkout is a handle the donor-facing client uses to open the gateway checkout.
type Checkout struct {
	MerchantOrderID string
	GatewayOrderID  string
	RedirectURL     string
	ExpiresAt       time.Time
}

// VerificationResult is the outcome of a client-triggered verification.
type VerificationResult struct {
	Success       bool
	State         OrderState
	AmountMinor   int64
	TransactionID string
	Message       string
}
