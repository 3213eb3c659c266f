package models

import "time"

// GatewayOrder is the gateway acknowledgement of a created order.
type GatewayOrder struct {
	GatewayOrderID string
	State          string
	RedirectURL    string
	ExpiresAt      time.Time
}

// GatewayStatus is the authoritative order status reported by the gateway.
type GatewayStatus struct {
	GatewayOrderID  string
	MerchantOrderID string
	State           OrderState
	AmountMinor     int64
	TransactionID   string
	PaymentMode     string
}

// CreateOrderRequest holds gateway order creation parameters.
type CreateOrderRequest struct {
	MerchantOrderID string
	AmountMinor     int64
	Donor           DonorInfo
	RedirectURL     string
	CallbackURL     string
}
