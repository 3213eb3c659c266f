package repository

import (
	"context"

	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/repository/postgres"
)

const (
	insertWebhookEventQuery = `
						INSERT INTO payment_webhook_events (event, merchant_order_id, gateway_order_id, state,
							amount_minor, transaction_id, payment_mode, outcome, error)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
						RETURNING id, received_at
`
)

// WebhookEventRepository stores received gateway webhooks
type WebhookEventRepository struct {
	db *postgres.DB
}

// NewWebhookEventRepository creates new WebhookEventRepository instance
func NewWebhookEventRepository(db *postgres.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// CreateWebhookEvent appends webhook delivery to the log
func (wr *WebhookEventRepository) CreateWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	return wr.db.QueryRow(ctx, insertWebhookEventQuery,
		event.Event,
		event.MerchantOrderID,
		event.GatewayOrderID,
		event.State,
		event.AmountMinor,
		event.TransactionID,
		event.PaymentMode,
		event.Outcome,
		event.Error,
	).Scan(&event.ID, &event.ReceivedAt)
}
