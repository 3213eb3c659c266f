package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rookgm/donations/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubTokens struct{}

func (stubTokens) CreateToken(login string) (string, error) {
	return "token-" + login, nil
}

func (stubTokens) VerifyToken(token string) (*models.TokenPayload, error) {
	if token != "token-admin" {
		return nil, errors.New("invalid token")
	}
	return &models.TokenPayload{Login: "admin", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name           string
		cookie         *http.Cookie
		wantStatusCode int
		wantLogin      string
	}{
		{
			name:           "valid_token",
			cookie:         &http.Cookie{Name: "auth_token", Value: "token-admin"},
			wantStatusCode: http.StatusOK,
			wantLogin:      "admin",
		},
		{
			name:           "no_cookie",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid_token",
			cookie:         &http.Cookie{Name: "auth_token", Value: "forged"},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLogin string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if p, ok := AuthPayload(r.Context()); ok {
					gotLogin = p.Login
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/x", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			Auth(stubTokens{})(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantLogin, gotLogin)
		})
	}
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hello"))
	})

	w := httptest.NewRecorder()
	Logging(logger)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/phonepe/webhook", nil))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/phonepe/webhook", fields["uri"])
		assert.EqualValues(t, http.StatusTeapot, fields["status"])
		assert.EqualValues(t, 5, fields["size"])
	}
}
