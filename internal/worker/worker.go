package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = time.Minute

type OrderService interface {
	ReconcileOrders(ctx context.Context, orderCh <-chan string)
	GetStaleOrders(ctx context.Context, orderCh chan<- string) error
}

// Reconciler is worker re-querying the gateway for stuck orders
type Reconciler struct {
	svc      OrderService
	interval time.Duration
	logger   *zap.Logger
}

// NewReconciler creates new reconciler
func NewReconciler(svc OrderService, interval time.Duration, logger *zap.Logger) *Reconciler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps stale orders every interval until ctx is done
func (rc *Reconciler) Run(ctx context.Context) {
	orders := make(chan string, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		rc.svc.ReconcileOrders(ctx, orders)
	}()

	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			rc.logger.Debug("reconciler is done")
			return
		case <-ticker.C:
			if err := rc.svc.GetStaleOrders(ctx, orders); err != nil && ctx.Err() == nil {
				rc.logger.Error("error get stale orders", zap.Error(err))
			}
		}
	}
}
