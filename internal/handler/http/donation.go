package handler

//go:generate mockgen -source=donation.go -destination=mocks/donation.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/money"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrSize = 256

type DonationService interface {
	StartDonation(ctx context.Context, amountMinor int64, donor models.DonorInfo) (*models.Checkout, error)
	PollUntilTerminal(ctx context.Context, merchantOrderID string, donor models.DonorInfo) (*models.VerificationResult, error)
	HandleWebhook(ctx context.Context, authorization string, body []byte) (string, error)
	CheckoutURL(ctx context.Context, merchantOrderID string) (string, error)
}

// DonationHandler represents HTTP handler for donation payment requests
type DonationHandler struct {
	svc    DonationService
	logger *zap.Logger
	now    func() time.Time
}

// NewDonationHandler creates new DonationHandler instance
func NewDonationHandler(svc DonationService, logger *zap.Logger) *DonationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationHandler{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

type donorReq struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (d donorReq) toModel() models.DonorInfo {
	return models.DonorInfo{
		FullName: d.FullName,
		Email:    d.Email,
		Phone:    d.Phone,
		Message:  d.Message,
	}
}

// CreateOrderReq is donation creation request, amount is in rupees
type CreateOrderReq struct {
	Amount decimal.Decimal `json:"amount"`
	donorReq
}

// CreateOrderResp is donation creation response
type CreateOrderResp struct {
	Success         bool   `json:"success"`
	OrderID         string `json:"orderId"`
	MerchantOrderID string `json:"merchantOrderId"`
	RedirectURL     string `json:"redirectUrl"`
	ExpireAt        int64  `json:"expireAt"`
}

// CreateOrder starts donation checkout
// 200 - order created, checkout url returned;
// 400 - malformed request or amount below minimum;
// 502 - payment gateway unavailable;
// 500 - internal server error.
func (dh *DonationHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateOrderReq
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		amount, err := money.ToMinor(req.Amount)
		if errors.Is(err, money.ErrAmountTooLarge) {
			writeError(w, http.StatusBadRequest, "amount: is too large")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "amount: must be a positive number")
			return
		}

		checkout, err := dh.svc.StartDonation(r.Context(), amount, req.donorReq.toModel())
		if err != nil {
			writeServiceError(w, dh.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, CreateOrderResp{
			Success:         true,
			OrderID:         checkout.GatewayOrderID,
			MerchantOrderID: checkout.MerchantOrderID,
			RedirectURL:     checkout.RedirectURL,
			ExpireAt:        checkout.ExpiresAt.UnixMilli(),
		})
	}
}

// VerifyReq is client-triggered verification request
type VerifyReq struct {
	MerchantOrderID string   `json:"merchantOrderId"`
	DonorInfo       donorReq `json:"donorInfo"`
}

// VerifyResp is verification result
type VerifyResp struct {
	Success       bool        `json:"success"`
	Status        string      `json:"status"`
	Amount        json.Number `json:"amount,omitempty"`
	TransactionID string      `json:"transactionId,omitempty"`
	Message       string      `json:"message"`
}

// VerifyPayment re-verifies order at the gateway
// 200 - order status, including still pending after the poll budget;
// 400 - malformed request;
// 404 - order not found;
// 409 - paid amount differs from order amount;
// 502 - payment gateway unavailable;
// 500 - internal server error.
func (dh *DonationHandler) VerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyReq
		if err := decodeJSON(w, r, &req); err != nil || req.MerchantOrderID == "" {
			writeError(w, http.StatusBadRequest, "merchantOrderId is required")
			return
		}

		res, err := dh.svc.PollUntilTerminal(r.Context(), req.MerchantOrderID, req.DonorInfo.toModel())
		if err != nil {
			if errors.Is(err, models.ErrVerificationTimeout) {
				writeJSON(w, http.StatusOK, VerifyResp{
					Success: false,
					Status:  string(models.OrderStatePending),
					Message: fmt.Sprintf("Payment confirmation is taking longer than expected. "+
						"Please contact support with order id %s.", req.MerchantOrderID),
				})
				return
			}
			writeServiceError(w, dh.logger, err)
			return
		}

		resp := VerifyResp{
			Success:       res.Success,
			Status:        string(res.State),
			TransactionID: res.TransactionID,
			Message:       res.Message,
		}
		if res.AmountMinor > 0 {
			resp.Amount = json.Number(money.ToMajor(res.AmountMinor).String())
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// WebhookResp acknowledges gateway webhook
type WebhookResp struct {
	Received bool   `json:"received"`
	Event    string `json:"event,omitempty"`
}

// Webhook ingests gateway server-to-server notification
// 200 - notification received, also on processing failure;
// 401 - sender authorization is invalid.
func (dh *DonationHandler) Webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			dh.logger.Error("read webhook body", zap.Error(err))
			writeJSON(w, http.StatusOK, WebhookResp{Received: true})
			return
		}

		event, err := dh.svc.HandleWebhook(r.Context(), r.Header.Get("Authorization"), body)
		if errors.Is(err, models.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err != nil {
			dh.logger.Error("webhook not processed", zap.String("event", event), zap.Error(err))
		}

		writeJSON(w, http.StatusOK, WebhookResp{Received: true, Event: event})
	}
}

// WebhookHealth reports the webhook endpoint is reachable
func (dh *DonationHandler) WebhookHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "Webhook endpoint active",
			"timestamp": dh.now().UTC().Format(time.RFC3339),
		})
	}
}

// CheckoutQR renders checkout url of a pending order as PNG
// 200 - PNG image;
// 404 - order not found;
// 409 - order is not awaiting payment.
func (dh *DonationHandler) CheckoutQR() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "merchantOrderID")

		url, err := dh.svc.CheckoutURL(r.Context(), id)
		if err != nil {
			writeServiceError(w, dh.logger, err)
			return
		}

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			writeServiceError(w, dh.logger, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
