package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rookgm/donations/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct converts the first validator failure into ValidationError
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())

	switch fe.Tag() {
	case "required":
		return models.NewValidationError(field, "is required")
	case "email":
		return models.NewValidationError(field, "must be a valid email address")
	case "max":
		return models.NewValidationError(field, "is too long")
	default:
		return models.NewValidationError(field, "is invalid")
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
