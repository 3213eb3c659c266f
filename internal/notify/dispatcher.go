// Package notify runs the side effects of completed donations and form
// submissions: ledger append, emails and the live feed. Failures are logged
// and never reported back to the caller.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/money"
	"go.uber.org/zap"
)

const defaultSideEffectTimeout = 30 * time.Second

// Ledger appends completed donations
type Ledger interface {
	RecordDonation(ctx context.Context, order models.Order) error
}

// Sender sends templated notification to recipient
type Sender interface {
	SendNotification(ctx context.Context, template, recipient string, data any) error
}

// Broadcaster publishes live feed events
type Broadcaster interface {
	Broadcast(ev FeedEvent)
}

// Config is dispatcher configuration
type Config struct {
	Organization string
	// AdminTo receives payment and form notifications
	AdminTo string
	Timeout time.Duration
}

// Dispatcher runs side effects in background goroutines detached from request cancellation
type Dispatcher struct {
	ledger Ledger
	sender Sender
	feed   Broadcaster
	cfg    Config
	logger *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates new Dispatcher instance. feed may be nil.
func NewDispatcher(ledger Ledger, sender Sender, feed Broadcaster, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultSideEffectTimeout
	}
	return &Dispatcher{
		ledger: ledger,
		sender: sender,
		feed:   feed,
		cfg:    cfg,
		logger: logger,
	}
}

// DonationCompleted records the donation and notifies admin, donor and feed
func (d *Dispatcher) DonationCompleted(ctx context.Context, order models.Order) {
	d.run(ctx, func(ctx context.Context) {
		log := d.logger.With(zap.String("merchant_order_id", order.MerchantOrderID))

		if err := d.ledger.RecordDonation(ctx, order); err != nil {
			log.Error("record donation", zap.Error(err))
		} else {
			log.Info("donation recorded")
		}

		view := NewDonationView(d.cfg.Organization, order)

		if d.cfg.AdminTo != "" {
			if err := d.sender.SendNotification(ctx, TemplateDonationAdmin, d.cfg.AdminTo, view); err != nil {
				log.Error("admin notification", zap.Error(err))
			}
		}

		if order.Donor.Email != "" {
			if err := d.sender.SendNotification(ctx, TemplateDonationReceipt, order.Donor.Email, view); err != nil {
				log.Error("donor receipt", zap.Error(err))
			}
		}

		if d.feed != nil {
			d.feed.Broadcast(FeedEvent{
				Type:      "donation",
				Amount:    money.Format(order.AmountMinor),
				DonorName: firstName(order.Donor.FullName),
				At:        time.Now(),
			})
		}
	})
}

// FormSubmitted notifies admin and sends auto-reply to submitter
func (d *Dispatcher) FormSubmitted(ctx context.Context, sub models.FormSubmission) {
	d.run(ctx, func(ctx context.Context) {
		log := d.logger.With(zap.String("kind", sub.Kind), zap.Uint64("submission_id", sub.ID))
		view := NewFormView(d.cfg.Organization, sub)

		if d.cfg.AdminTo != "" {
			if err := d.sender.SendNotification(ctx, TemplateFormAdmin, d.cfg.AdminTo, view); err != nil {
				log.Error("form admin notification", zap.Error(err))
			}
		}

		if err := d.sender.SendNotification(ctx, TemplateFormReply, sub.Email, view); err != nil {
			log.Error("form auto-reply", zap.Error(err))
		}
	})
}

func (d *Dispatcher) run(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()

		fn(ctx)
	}()
}

// Wait blocks until all started side effects finish
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "Anonymous"
	}
	return fields[0]
}
