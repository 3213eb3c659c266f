package models

import "time"

// TokenPayload is admin token payload
type TokenPayload struct {
	Login     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
