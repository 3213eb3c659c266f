package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/money"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/rookgm/donations/internal/service")

const (
	merchantOrderPrefix = "PTPF"

	defaultMinimumMinor = 100
	defaultPollAttempts = 10
	defaultPollInterval = 3 * time.Second
	defaultOrderExpiry  = 20 * time.Minute
	defaultStaleAfter   = 30 * time.Minute
	defaultBatchSize    = 50
)

// OrderRepository is interface for interacting with donation orders
type OrderRepository interface {
	// Register inserts new CREATED order
	Register(ctx context.Context, order *models.Order) (*models.Order, error)
	// Get returns order by merchant order id
	Get(ctx context.Context, merchantOrderID string) (*models.Order, error)
	// MarkPending moves CREATED order to PENDING
	MarkPending(ctx context.Context, merchantOrderID, gatewayOrderID, checkoutURL string, expiresAt time.Time) (*models.Order, error)
	// Complete moves CREATED or PENDING order to COMPLETED exactly once
	Complete(ctx context.Context, merchantOrderID string, c models.Completion) (models.TransitionResult, error)
	// MarkFailed moves open order to FAILED
	MarkFailed(ctx context.Context, merchantOrderID string) (models.TransitionResult, error)
	// MarkCancelled moves open order to CANCELLED
	MarkCancelled(ctx context.Context, merchantOrderID string) (models.TransitionResult, error)
	// ClaimNotification flips notified flag of COMPLETED order, true only for the first caller
	ClaimNotification(ctx context.Context, merchantOrderID string) (bool, error)
	// ListStale returns open orders older than cutoff and completed orders not yet notified
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

// PaymentGateway is remote payment service
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.GatewayOrder, error)
	GetOrderStatus(ctx context.Context, merchantOrderID string) (*models.GatewayStatus, error)
}

// DonationNotifier runs post-completion side effects
type DonationNotifier interface {
	DonationCompleted(ctx context.Context, order models.Order)
}

// WebhookEventRepository stores received webhooks
type WebhookEventRepository interface {
	CreateWebhookEvent(ctx context.Context, event *models.WebhookEvent) error
}

// OrderCreationError is returned when the gateway did not accept a new order.
// The order stays CREATED and is picked up by reconciliation.
type OrderCreationError struct {
	MerchantOrderID string
	Err             error
}

func (e *OrderCreationError) Error() string {
	return fmt.Sprintf("create order %s: %v", e.MerchantOrderID, e.Err)
}

func (e *OrderCreationError) Unwrap() error {
	return e.Err
}

// DonationConfig is donation service configuration
type DonationConfig struct {
	// BaseURL is public site url used for gateway redirect and callback
	BaseURL      string
	MinimumMinor int64
	PollAttempts uint64
	PollInterval time.Duration
	OrderExpiry  time.Duration
	StaleAfter   time.Duration
	BatchSize    int

	WebhookUsername string
	WebhookPassword string
}

func (c *DonationConfig) setDefaults() {
	if c.MinimumMinor <= 0 {
		c.MinimumMinor = defaultMinimumMinor
	}
	if c.PollAttempts == 0 {
		c.PollAttempts = defaultPollAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.OrderExpiry <= 0 {
		c.OrderExpiry = defaultOrderExpiry
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = defaultStaleAfter
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
}

// DonationService drives donation checkout and funnels every
// notification path into the same guarded store transitions
type DonationService struct {
	repo     OrderRepository
	gateway  PaymentGateway
	notifier DonationNotifier
	events   WebhookEventRepository
	cfg      DonationConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDonationService creates new DonationService instance
func NewDonationService(repo OrderRepository, gateway PaymentGateway, notifier DonationNotifier,
	events WebhookEventRepository, cfg DonationConfig, logger *zap.Logger) *DonationService {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationService{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		events:   events,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// StartDonation registers new order and creates it at the gateway
func (ds *DonationService) StartDonation(ctx context.Context, amountMinor int64, donor models.DonorInfo) (*models.Checkout, error) {
	ctx, span := tracer.Start(ctx, "DonationService.StartDonation")
	defer span.End()

	if amountMinor < ds.cfg.MinimumMinor {
		return nil, models.NewValidationError("amount",
			fmt.Sprintf("minimum donation is %s", money.Format(ds.cfg.MinimumMinor)))
	}
	donor = normalizeDonor(donor)
	if err := validateStruct(donor); err != nil {
		return nil, err
	}

	order, err := ds.repo.Register(ctx, &models.Order{
		MerchantOrderID: NewMerchantOrderID(ds.now()),
		AmountMinor:     amountMinor,
		State:           models.OrderStateCreated,
		Donor:           donor,
	})
	if err != nil {
		return nil, fmt.Errorf("register order: %w", err)
	}
	span.SetAttributes(attribute.String("merchant_order_id", order.MerchantOrderID))

	gwOrder, err := ds.gateway.CreateOrder(ctx, models.CreateOrderRequest{
		MerchantOrderID: order.MerchantOrderID,
		AmountMinor:     order.AmountMinor,
		Donor:           order.Donor,
		RedirectURL:     ds.redirectURL(order.MerchantOrderID),
		CallbackURL:     ds.callbackURL(),
	})
	if err != nil {
		ds.logger.Error("gateway order creation failed",
			zap.String("merchant_order_id", order.MerchantOrderID), zap.Error(err))
		return nil, &OrderCreationError{MerchantOrderID: order.MerchantOrderID, Err: err}
	}

	expiresAt := gwOrder.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = ds.now().Add(ds.cfg.OrderExpiry)
	}

	id := order.MerchantOrderID
	order, err = ds.repo.MarkPending(ctx, id, gwOrder.GatewayOrderID, gwOrder.RedirectURL, expiresAt)
	if err != nil {
		ds.logger.Error("mark order pending", zap.String("merchant_order_id", id), zap.Error(err))
		return nil, &OrderCreationError{MerchantOrderID: id, Err: err}
	}

	ds.logger.Info("donation order created",
		zap.String("merchant_order_id", order.MerchantOrderID),
		zap.String("gateway_order_id", order.GatewayOrderID),
		zap.Int64("amount", order.AmountMinor))

	return &models.Checkout{
		MerchantOrderID: order.MerchantOrderID,
		GatewayOrderID:  order.GatewayOrderID,
		RedirectURL:     order.CheckoutURL,
		ExpiresAt:       expiresAt,
	}, nil
}

// errStillPending marks a poll attempt that saw a non-terminal state
var errStillPending = errors.New("order is still pending")

// PollUntilTerminal re-verifies order at the gateway until it reaches a terminal
// state or the poll budget is spent. The donor info sent by the client is only
// logged, the stored donor record is authoritative.
func (ds *DonationService) PollUntilTerminal(ctx context.Context, merchantOrderID string, donor models.DonorInfo) (*models.VerificationResult, error) {
	ctx, span := tracer.Start(ctx, "DonationService.PollUntilTerminal",
		trace.WithAttributes(attribute.String("merchant_order_id", merchantOrderID)))
	defer span.End()

	order, err := ds.repo.Get(ctx, merchantOrderID)
	if err != nil {
		return nil, err
	}
	if donor.Email != "" && !strings.EqualFold(donor.Email, order.Donor.Email) {
		ds.logger.Warn("verification donor email differs from stored order",
			zap.String("merchant_order_id", merchantOrderID))
	}
	if order.State.IsTerminal() {
		return verificationResult(order), nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(ds.cfg.PollInterval), ds.cfg.PollAttempts-1),
		ctx)

	sawPending := false
	op := func() error {
		status, err := ds.gateway.GetOrderStatus(ctx, merchantOrderID)
		if err != nil {
			return err
		}
		if status.State == models.OrderStatePending {
			sawPending = true
			return errStillPending
		}

		res, err := ds.applyStatus(ctx, merchantOrderID, status)
		if err != nil {
			return backoff.Permanent(err)
		}
		order = res.Order
		return nil
	}

	notify := func(err error, wait time.Duration) {
		ds.logger.Debug("order not terminal yet",
			zap.String("merchant_order_id", merchantOrderID),
			zap.Duration("retry_in", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		// a gateway error on the last attempt after a pending answer is still a timeout
		if sawPending || errors.Is(err, errStillPending) || errors.Is(err, context.DeadlineExceeded) {
			ds.logger.Warn("verification budget exhausted",
				zap.String("merchant_order_id", merchantOrderID))
			return nil, fmt.Errorf("%w: order %s", models.ErrVerificationTimeout, merchantOrderID)
		}
		return nil, err
	}

	return verificationResult(order), nil
}

// GetOrder returns order by merchant order id
func (ds *DonationService) GetOrder(ctx context.Context, merchantOrderID string) (*models.Order, error) {
	return ds.repo.Get(ctx, merchantOrderID)
}

// CheckoutURL returns checkout url of a PENDING order
func (ds *DonationService) CheckoutURL(ctx context.Context, merchantOrderID string) (string, error) {
	order, err := ds.repo.Get(ctx, merchantOrderID)
	if err != nil {
		return "", err
	}
	if order.State != models.OrderStatePending || order.CheckoutURL == "" {
		return "", models.ErrCheckoutUnavailable
	}
	if order.ExpiresAt != nil && ds.now().After(*order.ExpiresAt) {
		return "", models.ErrCheckoutUnavailable
	}
	return order.CheckoutURL, nil
}

// applyStatus routes gateway status to the matching store transition.
// Applied is true only for the caller whose transition changed the order.
func (ds *DonationService) applyStatus(ctx context.Context, merchantOrderID string, status *models.GatewayStatus) (models.TransitionResult, error) {
	switch status.State {
	case models.OrderStateCompleted:
		return ds.complete(ctx, merchantOrderID, models.Completion{
			AmountMinor:   status.AmountMinor,
			TransactionID: status.TransactionID,
			PaymentMode:   status.PaymentMode,
		})
	case models.OrderStateFailed, models.OrderStateCancelled:
		terminate := ds.repo.MarkFailed
		if status.State == models.OrderStateCancelled {
			terminate = ds.repo.MarkCancelled
		}
		res, err := terminate(ctx, merchantOrderID)
		if err != nil {
			return models.TransitionResult{}, err
		}
		ds.logTermination(res, status.State)
		return res, nil
	default:
		order, err := ds.repo.Get(ctx, merchantOrderID)
		if err != nil {
			return models.TransitionResult{}, err
		}
		return models.TransitionResult{Order: order}, nil
	}
}

// complete is the single completion path for every ingestor
func (ds *DonationService) complete(ctx context.Context, merchantOrderID string, c models.Completion) (models.TransitionResult, error) {
	res, err := ds.repo.Complete(ctx, merchantOrderID, c)
	if err != nil {
		var integrityErr *models.IntegrityError
		switch {
		case errors.As(err, &integrityErr):
			ds.logger.Error("completion amount mismatch, order left for manual reconciliation",
				zap.String("merchant_order_id", merchantOrderID),
				zap.Int64("recorded_amount", integrityErr.RecordedMinor),
				zap.Int64("reported_amount", integrityErr.ReportedMinor))
		case errors.Is(err, models.ErrInvalidTransition):
			ds.logger.Error("completion rejected by order state",
				zap.String("merchant_order_id", merchantOrderID), zap.Error(err))
		}
		return models.TransitionResult{}, err
	}

	if !res.Applied {
		ds.logger.Debug("order already completed",
			zap.String("merchant_order_id", merchantOrderID),
			zap.String("transaction_id", res.Order.TransactionID))
		return res, nil
	}

	ds.logger.Info("donation completed",
		zap.String("merchant_order_id", merchantOrderID),
		zap.String("transaction_id", res.Order.TransactionID),
		zap.Int64("amount", res.Order.AmountMinor))

	ds.notifyOnce(ctx, res.Order)

	return res, nil
}

// notifyOnce triggers side effects if the notification claim succeeds
func (ds *DonationService) notifyOnce(ctx context.Context, order *models.Order) bool {
	claimed, err := ds.repo.ClaimNotification(ctx, order.MerchantOrderID)
	if err != nil {
		ds.logger.Error("claim notification",
			zap.String("merchant_order_id", order.MerchantOrderID), zap.Error(err))
		return false
	}
	if !claimed {
		return false
	}

	order.Notified = true
	if ds.notifier != nil {
		ds.notifier.DonationCompleted(ctx, *order)
	}
	return true
}

func (ds *DonationService) logTermination(res models.TransitionResult, to models.OrderState) {
	if !res.Applied {
		return
	}
	ds.logger.Info("donation order closed",
		zap.String("merchant_order_id", res.Order.MerchantOrderID),
		zap.String("state", string(to)))
}

func (ds *DonationService) redirectURL(merchantOrderID string) string {
	return strings.TrimRight(ds.cfg.BaseURL, "/") +
		"/how-to-help?payment=callback&orderId=" + url.QueryEscape(merchantOrderID)
}

func (ds *DonationService) callbackURL() string {
	return strings.TrimRight(ds.cfg.BaseURL, "/") + "/api/phonepe/webhook"
}

// NewMerchantOrderID returns PTPF_<unix ms>_<6 random upper-case chars>
func NewMerchantOrderID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return merchantOrderPrefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

func normalizeDonor(d models.DonorInfo) models.DonorInfo {
	return models.DonorInfo{
		FullName: strings.TrimSpace(d.FullName),
		Email:    strings.TrimSpace(d.Email),
		Phone:    strings.TrimSpace(d.Phone),
		Message:  strings.TrimSpace(d.Message),
	}
}

func verificationResult(order *models.Order) *models.VerificationResult {
	res := &models.VerificationResult{
		State:       order.State,
		AmountMinor: order.AmountMinor,
	}
	switch order.State {
	case models.OrderStateCompleted:
		res.Success = true
		res.TransactionID = order.TransactionID
		res.Message = "Payment successful. Thank you for your donation!"
	case models.OrderStateFailed:
		res.Message = "Payment failed. No amount has been charged."
	case models.OrderStateCancelled:
		res.Message = "Payment was cancelled."
	default:
		res.Message = "Payment is being processed."
	}
	return res
}
