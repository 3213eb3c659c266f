package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/repository/postgres"
)

const (
	insertLedgerQuery = `
						INSERT INTO donation_ledger (id, merchant_order_id, donor_name, donor_email, donor_phone,
							amount_minor, message, transaction_id, payment_mode, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
						ON CONFLICT (merchant_order_id) DO NOTHING
`
)

// LedgerRepository is append-only donation ledger
type LedgerRepository struct {
	db *postgres.DB
}

// NewLedgerRepository creates new LedgerRepository instance
func NewLedgerRepository(db *postgres.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// RecordDonation appends completed order to ledger. Repeated calls for one order add nothing.
func (lr *LedgerRepository) RecordDonation(ctx context.Context, order models.Order) error {
	_, err := lr.db.Exec(ctx, insertLedgerQuery,
		uuid.New(),
		order.MerchantOrderID,
		order.Donor.FullName,
		order.Donor.Email,
		order.Donor.Phone,
		order.AmountMinor,
		order.Donor.Message,
		order.TransactionID,
		order.PaymentMode,
		string(order.State),
	)
	return err
}
