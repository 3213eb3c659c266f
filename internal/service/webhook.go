package service

import (
	"context"
	"fmt"

	"github.com/rookgm/donations/internal/gateway"
	"github.com/rookgm/donations/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HandleWebhook authenticates and applies gateway notification.
// It returns models.ErrUnauthorized for unauthenticated deliveries; any other
// error is a processing failure the caller must still acknowledge.
func (ds *DonationService) HandleWebhook(ctx context.Context, authorization string, body []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "DonationService.HandleWebhook")
	defer span.End()

	if ds.cfg.WebhookUsername == "" ||
		!gateway.VerifyWebhookAuthorization(authorization, ds.cfg.WebhookUsername, ds.cfg.WebhookPassword) {
		ds.logger.Warn("webhook rejected: invalid authorization")
		return "", models.ErrUnauthorized
	}

	n, err := gateway.ParseWebhook(body)
	if err != nil {
		ds.logger.Error("webhook payload", zap.Error(err))
		return "", err
	}
	span.SetAttributes(
		attribute.String("event", n.Event),
		attribute.String("merchant_order_id", n.Status.MerchantOrderID))

	ds.logger.Info("webhook received",
		zap.String("event", n.Event),
		zap.String("merchant_order_id", n.Status.MerchantOrderID),
		zap.String("state", string(n.Status.State)))

	event := &models.WebhookEvent{
		Event:           n.Event,
		MerchantOrderID: n.Status.MerchantOrderID,
		GatewayOrderID:  n.Status.GatewayOrderID,
		State:           string(n.Status.State),
		AmountMinor:     n.Status.AmountMinor,
		TransactionID:   n.Status.TransactionID,
		PaymentMode:     n.Status.PaymentMode,
		ReceivedAt:      ds.now(),
	}

	procErr := ds.processNotification(ctx, n, event)
	if procErr != nil {
		event.Outcome = models.WebhookOutcomeFailed
		event.Error = procErr.Error()
		ds.logger.Error("webhook processing",
			zap.String("event", n.Event),
			zap.String("merchant_order_id", n.Status.MerchantOrderID),
			zap.Error(procErr))
	}

	if ds.events != nil {
		if err := ds.events.CreateWebhookEvent(ctx, event); err != nil {
			ds.logger.Error("store webhook event", zap.Error(err))
		}
	}

	return n.Event, procErr
}

// processNotification sets event outcome
func (ds *DonationService) processNotification(ctx context.Context, n *gateway.Notification, event *models.WebhookEvent) error {
	status := n.Status

	switch n.Event {
	case models.WebhookEventOrderCompleted:
		if status.State != models.OrderStateCompleted {
			event.Outcome = models.WebhookOutcomeLogged
			ds.logger.Warn("completion event with non-completed state",
				zap.String("merchant_order_id", status.MerchantOrderID),
				zap.String("state", string(status.State)))
			return nil
		}
	case models.WebhookEventOrderFailed:
		if !status.State.IsTerminal() || status.State == models.OrderStateCompleted {
			status.State = models.OrderStateFailed
		}
	case models.WebhookEventRefundCompleted, models.WebhookEventRefundFailed:
		event.Outcome = models.WebhookOutcomeLogged
		return nil
	default:
		event.Outcome = models.WebhookOutcomeLogged
		ds.logger.Warn("unknown webhook event", zap.String("event", n.Event))
		return nil
	}

	res, err := ds.applyStatus(ctx, status.MerchantOrderID, &status)
	if err != nil {
		return fmt.Errorf("webhook for order %s: %w", status.MerchantOrderID, err)
	}

	event.Outcome = models.WebhookOutcomeNoop
	if res.Applied {
		event.Outcome = models.WebhookOutcomeApplied
	}
	return nil
}
