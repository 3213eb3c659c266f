package service

import (
	"context"
	"crypto/subtle"

	"github.com/rookgm/donations/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials are configured admin login and bcrypt password hash
type AdminCredentials struct {
	Login        string
	PasswordHash string
}

// AuthService authenticates site admin
type AuthService struct {
	creds AdminCredentials
	ts    TokenService
}

// NewAuthService creates new AuthService instance
func NewAuthService(creds AdminCredentials, ts TokenService) *AuthService {
	return &AuthService{
		creds: creds,
		ts:    ts,
	}
}

// Login checks credentials and returns admin token
func (as *AuthService) Login(_ context.Context, login, password string) (string, error) {
	if as.creds.Login == "" || as.creds.PasswordHash == "" {
		return "", models.ErrInvalidCredentials
	}

	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(as.creds.Login)) == 1
	// always compare hash so response time does not reveal the login
	hashErr := bcrypt.CompareHashAndPassword([]byte(as.creds.PasswordHash), []byte(password))
	if !loginOK || hashErr != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.ts.CreateToken(login)
}
