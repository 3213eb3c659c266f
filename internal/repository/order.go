package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const orderColumns = `
	merchant_order_id, COALESCE(gateway_order_id, ''), amount_minor, state,
	donor_name, donor_email, donor_phone, donor_message,
	checkout_url, expires_at, COALESCE(transaction_id, ''), COALESCE(payment_mode, ''),
	notified, created_at, updated_at, completed_at`

const (
	insertOrderQuery = `
						INSERT INTO donation_orders (merchant_order_id, amount_minor, state, donor_name, donor_email, donor_phone, donor_message)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING ` + orderColumns

	selectOrderByIDQuery = `
						SELECT ` + orderColumns + ` FROM donation_orders
						WHERE merchant_order_id = $1
`
	markPendingQuery = `
						UPDATE donation_orders
						SET state = 'PENDING', gateway_order_id = $2, checkout_url = $3, expires_at = $4, updated_at = now()
						WHERE merchant_order_id = $1 AND state = 'CREATED'
						RETURNING ` + orderColumns

	completeOrderQuery = `
						UPDATE donation_orders
						SET state = 'COMPLETED', transaction_id = $2, payment_mode = $3, completed_at = now(), updated_at = now()
						WHERE merchant_order_id = $1 AND state IN ('CREATED', 'PENDING') AND amount_minor = $4
						RETURNING ` + orderColumns

	terminateOrderQuery = `
						UPDATE donation_orders
						SET state = $2, updated_at = now()
						WHERE merchant_order_id = $1 AND state IN ('CREATED', 'PENDING')
						RETURNING ` + orderColumns

	claimNotificationQuery = `
						UPDATE donation_orders
						SET notified = TRUE, updated_at = now()
						WHERE merchant_order_id = $1 AND state = 'COMPLETED' AND NOT notified
`
	selectStaleOrdersQuery = `
						SELECT ` + orderColumns + ` FROM donation_orders
						WHERE (state IN ('CREATED', 'PENDING') AND created_at < $1)
						   OR (state = 'COMPLETED' AND NOT notified AND completed_at < $1)
						ORDER BY created_at
						LIMIT $2
`
)

// OrderRepository implements order lifecycle store on postgres.
// Every transition is a single conditional UPDATE keyed on the current state.
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Register inserts new CREATED order
func (or *OrderRepository) Register(ctx context.Context, order *models.Order) (*models.Order, error) {
	row := or.db.QueryRow(ctx, insertOrderQuery,
		order.MerchantOrderID,
		order.AmountMinor,
		string(models.OrderStateCreated),
		order.Donor.FullName,
		order.Donor.Email,
		order.Donor.Phone,
		order.Donor.Message,
	)

	created, err := scanOrder(row)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrDuplicateOrder
		}
		return nil, err
	}

	return created, nil
}

// Get returns order by merchant order id
func (or *OrderRepository) Get(ctx context.Context, merchantOrderID string) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, merchantOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// MarkPending records gateway acknowledgement, valid only from CREATED
func (or *OrderRepository) MarkPending(ctx context.Context, merchantOrderID, gatewayOrderID, checkoutURL string, expiresAt time.Time) (*models.Order, error) {
	var exp *time.Time
	if !expiresAt.IsZero() {
		exp = &expiresAt
	}

	order, err := scanOrder(or.db.QueryRow(ctx, markPendingQuery, merchantOrderID, gatewayOrderID, checkoutURL, exp))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	cur, err := or.Get(ctx, merchantOrderID)
	if err != nil {
		return nil, err
	}

	return nil, &models.TransitionError{MerchantOrderID: merchantOrderID, From: cur.State, To: models.OrderStatePending}
}

// Complete moves CREATED or PENDING order to COMPLETED at most once
func (or *OrderRepository) Complete(ctx context.Context, merchantOrderID string, c models.Completion) (models.TransitionResult, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, completeOrderQuery, merchantOrderID, c.TransactionID, c.PaymentMode, c.AmountMinor))
	if err == nil {
		return models.TransitionResult{Applied: true, Order: order}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.TransitionResult{}, err
	}

	// nothing updated: completed concurrently, already terminal, amount mismatch or unknown order
	cur, err := or.Get(ctx, merchantOrderID)
	if err != nil {
		return models.TransitionResult{}, err
	}

	applied, err := cur.CheckCompletion(c)
	if err != nil {
		return models.TransitionResult{}, err
	}
	if applied {
		// the row went back to an open state between update and select, which never happens
		return models.TransitionResult{}, fmt.Errorf("complete order %s: state %s not updated", merchantOrderID, cur.State)
	}

	return models.TransitionResult{Applied: false, Order: cur}, nil
}

// MarkFailed moves open order to FAILED, no-op for terminal orders
func (or *OrderRepository) MarkFailed(ctx context.Context, merchantOrderID string) (models.TransitionResult, error) {
	return or.terminate(ctx, merchantOrderID, models.OrderStateFailed)
}

// MarkCancelled moves open order to CANCELLED, no-op for terminal orders
func (or *OrderRepository) MarkCancelled(ctx context.Context, merchantOrderID string) (models.TransitionResult, error) {
	return or.terminate(ctx, merchantOrderID, models.OrderStateCancelled)
}

func (or *OrderRepository) terminate(ctx context.Context, merchantOrderID string, to models.OrderState) (models.TransitionResult, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, terminateOrderQuery, merchantOrderID, string(to)))
	if err == nil {
		return models.TransitionResult{Applied: true, Order: order}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.TransitionResult{}, err
	}

	cur, err := or.Get(ctx, merchantOrderID)
	if err != nil {
		return models.TransitionResult{}, err
	}

	if _, err := cur.CheckTermination(to); err != nil {
		return models.TransitionResult{}, err
	}

	return models.TransitionResult{Applied: false, Order: cur}, nil
}

// ClaimNotification sets notified flag of completed order.
// It returns true for exactly one caller per order.
func (or *OrderRepository) ClaimNotification(ctx context.Context, merchantOrderID string) (bool, error) {
	cmd, err := or.db.Exec(ctx, claimNotificationQuery, merchantOrderID)
	if err != nil {
		return false, err
	}

	return cmd.RowsAffected() == 1, nil
}

// ListStale returns open orders created before cutoff and completed orders never notified
func (or *OrderRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, selectStaleOrdersQuery, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order models.Order
		state string
	)

	err := row.Scan(
		&order.MerchantOrderID,
		&order.GatewayOrderID,
		&order.AmountMinor,
		&state,
		&order.Donor.FullName,
		&order.Donor.Email,
		&order.Donor.Phone,
		&order.Donor.Message,
		&order.CheckoutURL,
		&order.ExpiresAt,
		&order.TransactionID,
		&order.PaymentMode,
		&order.Notified,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	order.State = models.OrderState(state)

	return &order, nil
}
