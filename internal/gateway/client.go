package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rookgm/donations/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// default time of retry after
	delaySeconds = 60
	// token is refreshed this long before the gateway expiry
	tokenSkew = 60 * time.Second
	// used when the auth response carries no expiry
	defaultTokenTTL = 15 * time.Minute
	// maximum error body kept for diagnostics
	maxErrorBody = 2048
)

// environments
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

var tracer = otel.Tracer("github.com/rookgm/donations/internal/gateway")

// URLs returns auth endpoint and API base URL for environment
func URLs(env string) (authURL, baseURL string, err error) {
	switch env {
	case EnvSandbox:
		return "https://api-preprod.phonepe.com/apis/pg-sandbox/v1/oauth/token",
			"https://api-preprod.phonepe.com/apis/pg-sandbox", nil
	case EnvProduction:
		return "https://api.phonepe.com/apis/identity-manager/v1/oauth/token",
			"https://api.phonepe.com/apis/pg", nil
	default:
		return "", "", fmt.Errorf("unknown gateway environment %q", env)
	}
}

// Config is gateway client configuration
type Config struct {
	AuthURL       string
	BaseURL       string
	ClientID      string
	ClientSecret  string
	ClientVersion string
	// OrderExpiry is sent as expireAfter on order creation
	OrderExpiry time.Duration
	Timeout     time.Duration
	// PaymentMessage is shown to the payer on the checkout page
	PaymentMessage string
}

// Client is remote payment service client.
// It is safe for concurrent use; the access token is cached until shortly before it expires.
type Client struct {
	client *http.Client
	cfg    Config
	now    func() time.Time

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient creates new Client instance
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "1"
	}
	if cfg.OrderExpiry == 0 {
		cfg.OrderExpiry = 20 * time.Minute
	}
	return &Client{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cfg: cfg,
		now: time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
	ExpiresIn   int64  `json:"expires_in"`
}

// accessToken returns cached token or exchanges credentials for a new one
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.token != "" && now.Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("client_version", c.cfg.ClientVersion)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}

	tokResp := tokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&tokResp); err != nil {
		return "", fmt.Errorf("decode gateway token: %w", err)
	}
	if tokResp.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: "empty access token"}
	}

	var exp time.Time
	switch {
	case tokResp.ExpiresAt > 0:
		exp = time.Unix(tokResp.ExpiresAt, 0)
	case tokResp.ExpiresIn > 0:
		exp = now.Add(time.Duration(tokResp.ExpiresIn) * time.Second)
	default:
		exp = now.Add(defaultTokenTTL)
	}

	c.token = tokResp.AccessToken
	c.tokenExp = exp.Add(-tokenSkew)

	return c.token, nil
}

// dropToken forgets cached token after the gateway rejected it
func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

type metaInfo struct {
	UDF1 string `json:"udf1"`
	UDF2 string `json:"udf2"`
	UDF3 string `json:"udf3"`
}

type merchantUrls struct {
	RedirectURL string `json:"redirectUrl"`
	CallbackURL string `json:"callbackUrl"`
}

type paymentFlow struct {
	Type         string       `json:"type"`
	Message      string       `json:"message"`
	MerchantUrls merchantUrls `json:"merchantUrls"`
}

type createOrderRequest struct {
	MerchantOrderID string      `json:"merchantOrderId"`
	Amount          int64       `json:"amount"`
	ExpireAfter     int64       `json:"expireAfter"`
	MetaInfo        metaInfo    `json:"metaInfo"`
	PaymentFlow     paymentFlow `json:"paymentFlow"`
}

type createOrderResponse struct {
	OrderID     string `json:"orderId"`
	State       string `json:"state"`
	RedirectURL string `json:"redirectUrl"`
	ExpireAt    int64  `json:"expireAt"`
}

// CreateOrder creates payment order
// POST /checkout/v2/pay
func (c *Client) CreateOrder(ctx context.Context, order models.CreateOrderRequest) (*models.GatewayOrder, error) {
	ctx, span := tracer.Start(ctx, "gateway.CreateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("merchant_order_id", order.MerchantOrderID))

	callbackURL := order.CallbackURL
	if callbackURL == "" {
		callbackURL = order.RedirectURL
	}

	payload := createOrderRequest{
		MerchantOrderID: order.MerchantOrderID,
		Amount:          order.AmountMinor,
		ExpireAfter:     int64(c.cfg.OrderExpiry / time.Second),
		MetaInfo: metaInfo{
			UDF1: order.Donor.Email,
			UDF2: order.Donor.FullName,
			UDF3: order.Donor.Phone,
		},
		PaymentFlow: paymentFlow{
			Type:    "PG_CHECKOUT",
			Message: c.cfg.PaymentMessage,
			MerchantUrls: merchantUrls{
				RedirectURL: order.RedirectURL,
				CallbackURL: callbackURL,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "checkout", "v2", "pay")
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "create order", http.MethodPost, endpoint, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order")
		return nil, err
	}
	defer resp.Body.Close()

	orderResp := createOrderResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("decode create order response: %w", err)
	}

	gwOrder := &models.GatewayOrder{
		GatewayOrderID: orderResp.OrderID,
		State:          orderResp.State,
		RedirectURL:    orderResp.RedirectURL,
	}
	// zero ExpiresAt lets the caller apply its own expiry
	if orderResp.ExpireAt > 0 {
		gwOrder.ExpiresAt = time.UnixMilli(orderResp.ExpireAt)
	}
	return gwOrder, nil
}

// PaymentDetail is a single payment attempt of an order
type PaymentDetail struct {
	TransactionID string `json:"transactionId"`
	PaymentMode   string `json:"paymentMode"`
	Timestamp     int64  `json:"timestamp"`
	Amount        int64  `json:"amount"`
	State         string `json:"state"`
}

type orderStatusResponse struct {
	OrderID         string          `json:"orderId"`
	MerchantOrderID string          `json:"merchantOrderId"`
	State           string          `json:"state"`
	Amount          int64           `json:"amount"`
	ExpireAt        int64           `json:"expireAt"`
	PaymentDetails  []PaymentDetail `json:"paymentDetails"`
}

// GetOrderStatus returns order status
// GET /checkout/v2/order/{merchantOrderId}/status
func (c *Client) GetOrderStatus(ctx context.Context, merchantOrderID string) (*models.GatewayStatus, error) {
	ctx, span := tracer.Start(ctx, "gateway.GetOrderStatus")
	defer span.End()
	span.SetAttributes(attribute.String("merchant_order_id", merchantOrderID))

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "checkout", "v2", "order", merchantOrderID, "status")
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "order status", http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order status")
		return nil, err
	}
	defer resp.Body.Close()

	statusResp := orderStatusResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&statusResp); err != nil {
		return nil, fmt.Errorf("decode order status response: %w", err)
	}

	status := ToStatus(
		statusResp.OrderID,
		statusResp.MerchantOrderID,
		statusResp.State,
		statusResp.Amount,
		statusResp.PaymentDetails,
	)
	if status.MerchantOrderID == "" {
		status.MerchantOrderID = merchantOrderID
	}
	span.SetAttributes(attribute.String("state", string(status.State)))

	return status, nil
}

// do sends authenticated request and returns 2xx response
func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte) (*http.Response, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "O-Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway %s request: %w", op, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	gwErr := &GatewayError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       readBody(resp.Body),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.dropToken()
	case http.StatusTooManyRequests:
		t, err := strconv.Atoi(resp.Header.Get("Retry-After"))
		if err != nil {
			t = delaySeconds
		}
		gwErr.RetryAfter = time.Duration(t) * time.Second
	}

	return nil, gwErr
}

// ToStatus maps gateway order fields onto GatewayStatus.
// Transaction id falls back to the gateway order id and payment mode to "PhonePe".
func ToStatus(gatewayOrderID, merchantOrderID, state string, amount int64, details []PaymentDetail) *models.GatewayStatus {
	status := &models.GatewayStatus{
		GatewayOrderID:  gatewayOrderID,
		MerchantOrderID: merchantOrderID,
		State:           ToOrderState(state),
		AmountMinor:     amount,
		TransactionID:   gatewayOrderID,
		PaymentMode:     "PhonePe",
	}

	if d, ok := settledDetail(details); ok {
		if d.TransactionID != "" {
			status.TransactionID = d.TransactionID
		}
		if d.PaymentMode != "" {
			status.PaymentMode = d.PaymentMode
		}
	}

	return status
}

// settledDetail picks the completed payment attempt, or the first one
func settledDetail(details []PaymentDetail) (PaymentDetail, bool) {
	for _, d := range details {
		if d.State == string(models.OrderStateCompleted) {
			return d, true
		}
	}
	if len(details) > 0 {
		return details[0], true
	}
	return PaymentDetail{}, false
}

// ToOrderState maps gateway state; anything non-terminal is PENDING
func ToOrderState(state string) models.OrderState {
	switch models.OrderState(strings.ToUpper(state)) {
	case models.OrderStateCompleted:
		return models.OrderStateCompleted
	case models.OrderStateFailed:
		return models.OrderStateFailed
	case models.OrderStateCancelled:
		return models.OrderStateCancelled
	default:
		return models.OrderStatePending
	}
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b)
}
