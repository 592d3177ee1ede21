package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/domain"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// WriteError renders err as {"error": {"status", "message"}}. The status is
// taken from the first domain.StatusCoder in the chain, otherwise 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	var sc domain.StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	body := errorBody{Error: errorPayload{Status: status, Message: err.Error()}}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Error.Details = ve.Details
	}

	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
