package service

import (
	"context"
	"errors"
	"time"

	"github.com/rookgm/donations/internal/gateway"
	"github.com/rookgm/donations/internal/models"
	"go.uber.org/zap"
)

// reconciliation outcomes
const (
	ReconcileUnchanged = "unchanged"
	ReconcileCompleted = "completed"
	ReconcileFailed    = "failed"
	ReconcileCancelled = "cancelled"
	ReconcileNotified  = "notified"
	ReconcileError     = "error"
)

// ReconcileSummary counts outcomes of one sweep
type ReconcileSummary struct {
	Checked int            `json:"checked"`
	Results map[string]int `json:"results"`
}

// ReconcileOrder re-queries gateway for a stuck order and applies its state
func (ds *DonationService) ReconcileOrder(ctx context.Context, merchantOrderID string) (string, error) {
	order, err := ds.repo.Get(ctx, merchantOrderID)
	if err != nil {
		return ReconcileError, err
	}

	if order.State == models.OrderStateCompleted {
		if !order.Notified && ds.notifyOnce(ctx, order) {
			ds.logger.Info("side effects repaired for completed order",
				zap.String("merchant_order_id", merchantOrderID))
			return ReconcileNotified, nil
		}
		return ReconcileUnchanged, nil
	}
	if order.State.IsTerminal() {
		return ReconcileUnchanged, nil
	}

	status, err := ds.gateway.GetOrderStatus(ctx, merchantOrderID)
	if err != nil {
		var gwErr *gateway.GatewayError
		if errors.As(err, &gwErr) && gwErr.NotFound() &&
			order.State == models.OrderStateCreated &&
			ds.now().Sub(order.CreatedAt) > ds.cfg.OrderExpiry {
			// never reached the gateway
			res, err := ds.repo.MarkCancelled(ctx, merchantOrderID)
			if err != nil {
				return ReconcileError, err
			}
			ds.logTermination(res, models.OrderStateCancelled)
			return ReconcileCancelled, nil
		}
		return ReconcileError, err
	}

	res, err := ds.applyStatus(ctx, merchantOrderID, status)
	if err != nil {
		return ReconcileError, err
	}
	if !res.Applied {
		return ReconcileUnchanged, nil
	}

	switch res.Order.State {
	case models.OrderStateCompleted:
		return ReconcileCompleted, nil
	case models.OrderStateFailed:
		return ReconcileFailed, nil
	case models.OrderStateCancelled:
		return ReconcileCancelled, nil
	}
	return ReconcileUnchanged, nil
}

// Reconcile runs one sweep over stale orders synchronously
func (ds *DonationService) Reconcile(ctx context.Context) (*ReconcileSummary, error) {
	orders, err := ds.repo.ListStale(ctx, ds.now().Add(-ds.cfg.StaleAfter), ds.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	summary := &ReconcileSummary{Results: make(map[string]int)}
	for _, order := range orders {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		outcome, err := ds.ReconcileOrder(ctx, order.MerchantOrderID)
		if err != nil {
			ds.logger.Error("reconcile order",
				zap.String("merchant_order_id", order.MerchantOrderID), zap.Error(err))
		}
		summary.Checked++
		summary.Results[outcome]++
	}

	return summary, nil
}

// ReconcileOrders reconciles orders received from channel
func (ds *DonationService) ReconcileOrders(ctx context.Context, orderCh <-chan string) {
	for {
		select {
		case <-ctx.Done():
			ds.logger.Debug("reconciliation is done")
			return
		case id, ok := <-orderCh:
			if !ok {
				return
			}

			outcome, err := ds.ReconcileOrder(ctx, id)
			if err != nil {
				var gwErr *gateway.GatewayError
				if errors.As(err, &gwErr) && gwErr.RetryAfter > 0 {
					ds.logger.Debug("too many requests", zap.Duration("retry-after", gwErr.RetryAfter))
					if !sleepCtx(ctx, gwErr.RetryAfter) {
						return
					}
					continue
				}
				ds.logger.Error("reconcile order", zap.String("merchant_order_id", id), zap.Error(err))
				continue
			}

			ds.logger.Debug("order reconciled",
				zap.String("merchant_order_id", id),
				zap.String("outcome", outcome))
		}
	}
}

// GetStaleOrders writes stale orders to channel for reconciliation
func (ds *DonationService) GetStaleOrders(ctx context.Context, orderCh chan<- string) error {
	orders, err := ds.repo.ListStale(ctx, ds.now().Add(-ds.cfg.StaleAfter), ds.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, order := range orders {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case orderCh <- order.MerchantOrderID:
		}
	}

	return nil
}

// sleepCtx waits for d, false if ctx is done first
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
