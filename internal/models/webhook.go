package models

import "time"

// webhook events
const (
	WebhookEventOrderCompleted  = "checkout.order.completed"
	WebhookEventOrderFailed     = "checkout.order.failed"
	WebhookEventRefundCompleted = "pg.refund.completed"
	WebhookEventRefundFailed    = "pg.refund.failed"
)

// webhook processing outcomes
const (
	WebhookOutcomeApplied = "applied"
	WebhookOutcomeNoop    = "noop"
	WebhookOutcomeLogged  = "logged"
	WebhookOutcomeFailed  = "failed"
)

// WebhookEvent is a single gateway server-to-server notification
type WebhookEvent struct {
	ID              uint64
	Event           string
	MerchantOrderID string
	GatewayOrderID  string
	State           string
	AmountMinor     int64
	TransactionID   string
	PaymentMode     string
	Outcome         string
	Error           string
	ReceivedAt      time.Time
}
