package handler

//go:generate mockgen -source=admin.go -destination=mocks/admin.go -package=mocks

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/money"
	"github.com/rookgm/donations/internal/service"
	"go.uber.org/zap"
)

const authCookieName = "auth_token"

type AuthService interface {
	Login(ctx context.Context, login, password string) (string, error)
}

type AdminService interface {
	GetOrder(ctx context.Context, merchantOrderID string) (*models.Order, error)
	Reconcile(ctx context.Context) (*service.ReconcileSummary, error)
}

// AdminHandler represents HTTP handler for admin requests
type AdminHandler struct {
	auth     AuthService
	svc      AdminService
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewAdminHandler creates new AdminHandler instance
func NewAdminHandler(auth AuthService, svc AdminService, tokenTTL time.Duration, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		auth:     auth,
		svc:      svc,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// LoginReq is admin login request
type LoginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login authenticates admin and sets auth cookie
// 200 - admin authenticated;
// 400 - malformed request;
// 401 - invalid login or password;
// 500 - internal server error.
func (ah *AdminHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginReq
		if err := decodeJSON(w, r, &req); err != nil || req.Login == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "login and password are required")
			return
		}

		token, err := ah.auth.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			writeServiceError(w, ah.logger, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(ah.tokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteStrictMode,
		})

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// OrderResp is order as shown to admin
type OrderResp struct {
	MerchantOrderID string  `json:"merchantOrderId"`
	GatewayOrderID  string  `json:"gatewayOrderId,omitempty"`
	Amount          string  `json:"amount"`
	AmountMinor     int64   `json:"amountMinor"`
	State           string  `json:"state"`
	DonorName       string  `json:"donorName"`
	DonorEmail      string  `json:"donorEmail"`
	DonorPhone      string  `json:"donorPhone,omitempty"`
	TransactionID   string  `json:"transactionId,omitempty"`
	PaymentMode     string  `json:"paymentMode,omitempty"`
	Notified        bool    `json:"notified"`
	CreatedAt       string  `json:"createdAt"`
	CompletedAt     *string `json:"completedAt,omitempty"`
}

func toOrderResp(o *models.Order) OrderResp {
	resp := OrderResp{
		MerchantOrderID: o.MerchantOrderID,
		GatewayOrderID:  o.GatewayOrderID,
		Amount:          money.Format(o.AmountMinor),
		AmountMinor:     o.AmountMinor,
		State:           string(o.State),
		DonorName:       o.Donor.FullName,
		DonorEmail:      o.Donor.Email,
		DonorPhone:      o.Donor.Phone,
		TransactionID:   o.TransactionID,
		PaymentMode:     o.PaymentMode,
		Notified:        o.Notified,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
	}
	if o.CompletedAt != nil {
		s := o.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

// GetOrder returns order by merchant order id
// 200 - order found;
// 401 - admin is not authenticated;
// 404 - order not found;
// 500 - internal server error.
func (ah *AdminHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := ah.svc.GetOrder(r.Context(), chi.URLParam(r, "merchantOrderID"))
		if err != nil {
			writeServiceError(w, ah.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toOrderResp(order))
	}
}

// Reconcile runs one reconciliation sweep
// 200 - sweep finished, outcome counts returned;
// 401 - admin is not authenticated;
// 500 - internal server error.
func (ah *AdminHandler) Reconcile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := ah.svc.Reconcile(r.Context())
		if err != nil {
			writeServiceError(w, ah.logger, err)
			return
		}

		ah.logger.Info("manual reconciliation finished", zap.Int("checked", summary.Checked))
		writeJSON(w, http.StatusOK, summary)
	}
}
