package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rookgm/donations/internal/models"
)

// ErrWebhookMalformed is returned for payloads without an event or order id
var ErrWebhookMalformed = errors.New("malformed webhook payload")

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		MerchantID      string          `json:"merchantId"`
		MerchantOrderID string          `json:"merchantOrderId"`
		OrderID         string          `json:"orderId"`
		State           string          `json:"state"`
		Amount          int64           `json:"amount"`
		ExpireAt        int64           `json:"expireAt"`
		PaymentDetails  []PaymentDetail `json:"paymentDetails"`
	} `json:"payload"`
}

// Notification is a decoded gateway webhook
type Notification struct {
	Event  string
	Status models.GatewayStatus
}

// ParseWebhook decodes webhook body
func ParseWebhook(body []byte) (*Notification, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookMalformed, err)
	}
	if p.Event == "" || p.Payload.MerchantOrderID == "" {
		return nil, ErrWebhookMalformed
	}

	status := ToStatus(p.Payload.OrderID, p.Payload.MerchantOrderID, p.Payload.State, p.Payload.Amount, p.Payload.PaymentDetails)

	return &Notification{
		Event:  p.Event,
		Status: *status,
	}, nil
}

// WebhookAuthorization returns expected Authorization header value: hex(sha256("username:password"))
func WebhookAuthorization(username, password string) string {
	sum := sha256.Sum256([]byte(username + ":" + password))
	return hex.EncodeToString(sum[:])
}

// VerifyWebhookAuthorization compares header with configured credentials in constant time
func VerifyWebhookAuthorization(header, username, password string) bool {
	header = strings.TrimSpace(header)
	// some gateway setups prefix the hash with the scheme
	header = strings.TrimPrefix(header, "SHA256 ")
	want := WebhookAuthorization(username, password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(header)), []byte(want)) == 1
}
