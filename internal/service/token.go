package service

import "github.com/rookgm/donations/internal/models"

type TokenService interface {
	CreateToken(login string) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}
