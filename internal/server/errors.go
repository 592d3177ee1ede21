package server

import (
	"net/http"

	"go.uber.org/zap"

	restomiddleware "github.com/tablehost/restaurantapi/internal/middleware"
)

// writeError is the terminal error renderer for every handler.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	restomiddleware.WriteError(w, r, logger, err)
}
