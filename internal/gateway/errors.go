package gateway

import (
	"fmt"
	"time"
)

// AuthError is returned when the credential exchange fails
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("gateway auth failed: status %d", e.StatusCode)
}

// GatewayError is returned for any non-2xx gateway response
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	// RetryAfter is set for 429 responses
	RetryAfter time.Duration
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: status %d", e.Op, e.StatusCode)
}

// NotFound reports whether the gateway does not know the order
func (e *GatewayError) NotFound() bool {
	return e.StatusCode == 404
}
