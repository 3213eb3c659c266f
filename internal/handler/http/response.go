package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rookgm/donations/internal/gateway"
	"github.com/rookgm/donations/internal/models"
	"github.com/rookgm/donations/internal/service"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

type errorResp struct {
	Error string `json:"error"`
}

// writeJSON writes v with status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResp{Error: msg})
}

// decodeJSON decodes limited request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(v)
}

// writeServiceError maps service errors to status codes
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		verr        *models.ValidationError
		integrity   *models.IntegrityError
		creationErr *service.OrderCreationError
		authErr     *gateway.AuthError
		gwErr       *gateway.GatewayError
	)

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, models.ErrOrderNotFound), errors.Is(err, models.ErrDataNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.As(err, &integrity):
		writeError(w, http.StatusConflict, "payment amount does not match the order, please contact support")
	case errors.Is(err, models.ErrCheckoutUnavailable):
		writeError(w, http.StatusConflict, "checkout is not available for this order")
	case errors.As(err, &creationErr), errors.As(err, &authErr), errors.As(err, &gwErr):
		logger.Error("payment gateway failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, "payment gateway unavailable, please try again")
	case errors.Is(err, models.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid login or password")
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
