// Package memory is an in-process order lifecycle store with the same
// transition guards as the postgres repository. Used for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rookgm/donations/internal/models"
)

// OrderStore keeps orders in a map guarded by a mutex
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	now    func() time.Time
}

// NewOrderStore creates empty OrderStore
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*models.Order),
		now:    time.Now,
	}
}

// Register inserts new CREATED order
func (s *OrderStore) Register(_ context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.MerchantOrderID]; ok {
		return nil, models.ErrDuplicateOrder
	}

	now := s.now()
	stored := *order
	stored.State = models.OrderStateCreated
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.orders[order.MerchantOrderID] = &stored

	return copyOrder(&stored), nil
}

// Get returns order by merchant order id
func (s *OrderStore) Get(_ context.Context, merchantOrderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[merchantOrderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}

	return copyOrder(order), nil
}

// MarkPending records gateway acknowledgement, valid only from CREATED
func (s *OrderStore) MarkPending(_ context.Context, merchantOrderID, gatewayOrderID, checkoutURL string, expiresAt time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[merchantOrderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	if order.State != models.OrderStateCreated {
		return nil, &models.TransitionError{MerchantOrderID: merchantOrderID, From: order.State, To: models.OrderStatePending}
	}

	order.State = models.OrderStatePending
	order.GatewayOrderID = gatewayOrderID
	order.CheckoutURL = checkoutURL
	if !expiresAt.IsZero() {
		exp := expiresAt
		order.ExpiresAt = &exp
	}
	order.UpdatedAt = s.now()

	return copyOrder(order), nil
}

// Complete moves CREATED or PENDING order to COMPLETED at most once
func (s *OrderStore) Complete(_ context.Context, merchantOrderID string, c models.Completion) (models.TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[merchantOrderID]
	if !ok {
		return models.TransitionResult{}, models.ErrOrderNotFound
	}

	applied, err := order.CheckCompletion(c)
	if err != nil {
		return models.TransitionResult{}, err
	}
	if applied {
		now := s.now()
		order.State = models.OrderStateCompleted
		order.TransactionID = c.TransactionID
		order.PaymentMode = c.PaymentMode
		order.CompletedAt = &now
		order.UpdatedAt = now
	}

	return models.TransitionResult{Applied: applied, Order: copyOrder(order)}, nil
}

// MarkFailed moves open order to FAILED, no-op for terminal orders
func (s *OrderStore) MarkFailed(ctx context.Context, merchantOrderID string) (models.TransitionResult, error) {
	return s.terminate(ctx, merchantOrderID, models.OrderStateFailed)
}

// MarkCancelled moves open order to CANCELLED, no-op for terminal orders
func (s *OrderStore) MarkCancelled(ctx context.Context, merchantOrderID string) (models.TransitionResult, error) {
	return s.terminate(ctx, merchantOrderID, models.OrderStateCancelled)
}

func (s *OrderStore) terminate(_ context.Context, merchantOrderID string, to models.OrderState) (models.TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[merchantOrderID]
	if !ok {
		return models.TransitionResult{}, models.ErrOrderNotFound
	}

	applied, err := order.CheckTermination(to)
	if err != nil {
		return models.TransitionResult{}, err
	}
	if applied {
		order.State = to
		order.UpdatedAt = s.now()
	}

	return models.TransitionResult{Applied: applied, Order: copyOrder(order)}, nil
}

// ClaimNotification sets notified flag of completed order, true for exactly one caller
func (s *OrderStore) ClaimNotification(_ context.Context, merchantOrderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[merchantOrderID]
	if !ok {
		return false, models.ErrOrderNotFound
	}
	if order.State != models.OrderStateCompleted || order.Notified {
		return false, nil
	}
	order.Notified = true

	return true, nil
}

// ListStale returns open orders created before cutoff and completed orders never notified
func (s *OrderStore) ListStale(_ context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []models.Order{}
	for _, o := range s.orders {
		switch {
		case !o.State.IsTerminal() && o.CreatedAt.Before(cutoff):
		case o.State == models.OrderStateCompleted && !o.Notified && o.CompletedAt != nil && o.CompletedAt.Before(cutoff):
		default:
			continue
		}
		orders = append(orders, *copyOrder(o))
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, nil
}

// SetClock replaces the store clock
func (s *OrderStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	if o.ExpiresAt != nil {
		t := *o.ExpiresAt
		c.ExpiresAt = &t
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
