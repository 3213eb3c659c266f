package service

import (
	"context"
	"testing"
	"time"

	"github.com/rookgm/donations/internal/auth"
	"github.com/rookgm/donations/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	ts := auth.NewAuthToken([]byte("f53ac685bbceebd75043e6be2e06ee07"), time.Hour)
	svc := NewAuthService(AdminCredentials{Login: "admin", PasswordHash: string(hash)}, ts)

	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
	}{
		{name: "valid", login: "admin", password: "s3cret"},
		{name: "wrong_password", login: "admin", password: "guess", wantErr: models.ErrInvalidCredentials},
		{name: "wrong_login", login: "root", password: "s3cret", wantErr: models.ErrInvalidCredentials},
		{name: "empty", wantErr: models.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(context.Background(), tt.login, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			payload, err := ts.VerifyToken(token)
			require.NoError(t, err)
			assert.Equal(t, "admin", payload.Login)
		})
	}
}

func TestAuthService_Login_NotConfigured(t *testing.T) {
	svc := NewAuthService(AdminCredentials{}, auth.NewAuthToken([]byte("k"), time.Hour))

	_, err := svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
