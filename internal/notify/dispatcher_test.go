package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rookgm/donations/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingLedger struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
}

func (l *recordingLedger) RecordDonation(_ context.Context, order models.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders = append(l.orders, order)
	return l.err
}

type sentMail struct {
	template  string
	recipient string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
}

func (s *recordingSender) SendNotification(_ context.Context, template, recipient string, data any) error {
	if _, _, err := Render(template, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMail{template: template, recipient: recipient})
	return nil
}

type recordingFeed struct {
	mu     sync.Mutex
	events []FeedEvent
}

func (f *recordingFeed) Broadcast(ev FeedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func completedOrder() models.Order {
	at := time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC)
	return models.Order{
		MerchantOrderID: "PTPF_1_ABCDEF",
		AmountMinor:     100000,
		State:           models.OrderStateCompleted,
		Donor:           models.DonorInfo{FullName: "Asha Rao", Email: "asha@example.com", Message: "Keep going"},
		TransactionID:   "T1",
		PaymentMode:     "UPI",
		CompletedAt:     &at,
	}
}

func TestDispatcher_DonationCompleted(t *testing.T) {
	ledger := &recordingLedger{}
	sender := &recordingSender{}
	feed := &recordingFeed{}
	d := NewDispatcher(ledger, sender, feed, Config{Organization: "Protect The People Foundation", AdminTo: "admin@example.org"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	d.DonationCompleted(ctx, completedOrder())
	// side effects survive request cancellation
	cancel()
	d.Wait()

	require.Len(t, ledger.orders, 1)
	assert.Equal(t, []sentMail{
		{template: TemplateDonationAdmin, recipient: "admin@example.org"},
		{template: TemplateDonationReceipt, recipient: "asha@example.com"},
	}, sender.sent)
	require.Len(t, feed.events, 1)
	assert.Equal(t, "Asha", feed.events[0].DonorName)
	assert.Equal(t, "₹1,000", feed.events[0].Amount)
}

func TestDispatcher_LedgerFailureStillNotifies(t *testing.T) {
	ledger := &recordingLedger{err: errors.New("db down")}
	sender := &recordingSender{}
	d := NewDispatcher(ledger, sender, nil, Config{AdminTo: "admin@example.org"}, zap.NewNop())

	d.DonationCompleted(context.Background(), completedOrder())
	d.Wait()

	assert.Len(t, sender.sent, 2)
}

func TestDispatcher_FormSubmitted(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(&recordingLedger{}, sender, nil, Config{AdminTo: "admin@example.org"}, zap.NewNop())

	d.FormSubmitted(context.Background(), models.FormSubmission{
		Kind:   models.FormKindContact,
		Name:   "Ravi",
		Email:  "ravi@example.com",
		Fields: map[string]string{"subject": "Hello", "message": "Hi there"},
	})
	d.Wait()

	assert.Equal(t, []sentMail{
		{template: TemplateFormAdmin, recipient: "admin@example.org"},
		{template: TemplateFormReply, recipient: "ravi@example.com"},
	}, sender.sent)
}

func TestRender_DonationReceipt(t *testing.T) {
	subject, body, err := Render(TemplateDonationReceipt, NewDonationView("PTPF", completedOrder()))
	require.NoError(t, err)

	assert.Equal(t, "Thank you for your donation of ₹1,000", subject)
	assert.Contains(t, body, "T1")
	assert.Contains(t, body, "PTPF_1_ABCDEF")
	// 06:30 UTC is 12:00 IST
	assert.Contains(t, body, "1 March 2026, 12:00 PM")
}
