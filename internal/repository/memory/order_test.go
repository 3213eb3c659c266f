package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rookgm/donations/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingStore(t *testing.T, id string, amount int64) *OrderStore {
	t.Helper()
	ctx := context.Background()

	s := NewOrderStore()
	_, err := s.Register(ctx, &models.Order{
		MerchantOrderID: id,
		AmountMinor:     amount,
		Donor:           models.DonorInfo{FullName: "Asha Rao", Email: "asha@example.com"},
	})
	require.NoError(t, err)

	_, err = s.MarkPending(ctx, id, "OMO1", "https://pay.example/OMO1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	return s
}

func TestOrderStore_Register(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	order, err := s.Register(ctx, &models.Order{MerchantOrderID: "PTPF_1", AmountMinor: 100})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateCreated, order.State)

	_, err = s.Register(ctx, &models.Order{MerchantOrderID: "PTPF_1", AmountMinor: 100})
	assert.ErrorIs(t, err, models.ErrDuplicateOrder)

	_, err = s.Get(ctx, "PTPF_2")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestOrderStore_MarkPending_OnlyFromCreated(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100)

	_, err := s.MarkPending(context.Background(), "PTPF_1", "OMO2", "", time.Time{})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderStore_Complete_Twice(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100000)
	ctx := context.Background()

	first, err := s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100000, TransactionID: "T1", PaymentMode: "UPI"})
	require.NoError(t, err)
	assert.True(t, first.Applied)

	second, err := s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100000, TransactionID: "T1", PaymentMode: "UPI"})
	require.NoError(t, err)
	assert.False(t, second.Applied)

	if diff := cmp.Diff(first.Order, second.Order); diff != "" {
		t.Errorf("record changed (-first +second):\n%s", diff)
	}
}

func TestOrderStore_Complete_Concurrent(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100)
	ctx := context.Background()

	const callers = 50
	results := make(chan models.TransitionResult, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100, TransactionID: fmt.Sprintf("T%d", i)})
			assert.NoError(t, err)
			results <- res
		}(i)
	}
	wg.Wait()
	close(results)

	applied := 0
	var winner string
	for res := range results {
		if res.Applied {
			applied++
			winner = res.Order.TransactionID
		}
	}
	assert.Equal(t, 1, applied)

	order, err := s.Get(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.Equal(t, winner, order.TransactionID)
}

func TestOrderStore_Complete_AmountMismatch(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100000)
	ctx := context.Background()

	_, err := s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100, TransactionID: "T1"})

	var integrityErr *models.IntegrityError
	require.True(t, errors.As(err, &integrityErr))

	order, err := s.Get(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatePending, order.State)
	assert.Nil(t, order.CompletedAt)
}

func TestOrderStore_MarkFailed_AfterCompleted(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100)
	ctx := context.Background()

	_, err := s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100, TransactionID: "T1"})
	require.NoError(t, err)

	res, err := s.MarkFailed(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, models.OrderStateCompleted, res.Order.State)

	res, err = s.MarkCancelled(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestOrderStore_Complete_AfterFailed(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100)
	ctx := context.Background()

	res, err := s.MarkFailed(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.True(t, res.Applied)

	_, err = s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderStore_ClaimNotification(t *testing.T) {
	s := newPendingStore(t, "PTPF_1", 100)
	ctx := context.Background()

	claimed, err := s.ClaimNotification(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.False(t, claimed, "pending order cannot be claimed")

	_, err = s.Complete(ctx, "PTPF_1", models.Completion{AmountMinor: 100})
	require.NoError(t, err)

	claimed, err = s.ClaimNotification(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = s.ClaimNotification(ctx, "PTPF_1")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestOrderStore_ListStale(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	s.SetClock(func() time.Time { return base })
	_, err := s.Register(ctx, &models.Order{MerchantOrderID: "old", AmountMinor: 100})
	require.NoError(t, err)

	s.SetClock(func() time.Time { return base.Add(time.Hour) })
	_, err = s.Register(ctx, &models.Order{MerchantOrderID: "new", AmountMinor: 100})
	require.NoError(t, err)

	orders, err := s.ListStale(ctx, base.Add(30*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "old", orders[0].MerchantOrderID)
}
