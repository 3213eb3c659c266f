package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultMailAPIURL is Resend-compatible email endpoint
const DefaultMailAPIURL = "https://api.resend.com/emails"

// MailConfig is mail API configuration
type MailConfig struct {
	APIURL     string
	APIKey     string
	From       string
	MaxRetries uint64
}

// Mailer sends templated emails through an HTTP mail API.
// Without an API key it only logs what it would have sent.
type Mailer struct {
	client *http.Client
	cfg    MailConfig
	logger *zap.Logger
}

// NewMailer creates new Mailer instance
func NewMailer(cfg MailConfig, logger *zap.Logger) *Mailer {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultMailAPIURL
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &Mailer{
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
		logger: logger,
	}
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendNotification renders template and sends it to recipient
func (m *Mailer) SendNotification(ctx context.Context, name, recipient string, data any) error {
	subject, body, err := Render(name, data)
	if err != nil {
		return err
	}

	if m.cfg.APIKey == "" {
		m.logger.Debug("mail is not configured, skip sending",
			zap.String("template", name),
			zap.String("recipient", recipient))
		return nil
	}

	payload, err := json.Marshal(sendEmailRequest{
		From:    m.cfg.From,
		To:      []string{recipient},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return err
	}

	send := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

		resp, err := m.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		sendErr := fmt.Errorf("mail api status %d: %s", resp.StatusCode, respBody)
		// only rate limiting and server errors are worth retrying
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return backoff.Permanent(sendErr)
		}
		return sendErr
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), m.cfg.MaxRetries), ctx)
	if err := backoff.Retry(send, b); err != nil {
		return fmt.Errorf("send %s to %s: %w", name, recipient, err)
	}

	m.logger.Info("email sent", zap.String("template", name), zap.String("recipient", recipient))

	return nil
}
