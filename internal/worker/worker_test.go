package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOrderService struct {
	mu         sync.Mutex
	sweeps     int
	reconciled []string
	failFirst  bool
}

func (f *fakeOrderService) GetStaleOrders(ctx context.Context, orderCh chan<- string) error {
	f.mu.Lock()
	f.sweeps++
	sweep := f.sweeps
	f.mu.Unlock()

	if f.failFirst && sweep == 1 {
		return errors.New("db is down")
	}
	select {
	case orderCh <- "PTPF_1_ABCDEF":
	case <-ctx.Done():
	}
	return nil
}

func (f *fakeOrderService) ReconcileOrders(ctx context.Context, orderCh <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-orderCh:
			f.mu.Lock()
			f.reconciled = append(f.reconciled, id)
			f.mu.Unlock()
		}
	}
}

func (f *fakeOrderService) count() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps, len(f.reconciled)
}

func TestReconciler_Run(t *testing.T) {
	svc := &fakeOrderService{failFirst: true}
	rc := NewReconciler(svc, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		rc.Run(ctx)
		close(finished)
	}()

	assert.Eventually(t, func() bool {
		_, reconciled := svc.count()
		return reconciled >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}

	sweeps, _ := svc.count()
	assert.GreaterOrEqual(t, sweeps, 3)
}
