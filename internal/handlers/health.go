package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
)

const healthTimeout = 500 * time.Millisecond

func handleHealth(health healthChecker, logger logger.Logger) http.Handler {
	type response struct {
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := health(ctx); err != nil {
			logger.Warn("storage is not healthy", "error", err)
			render.ServiceError(w, "Storage is unavailable", http.StatusServiceUnavailable)
			return
		}

		render.JSON(w, response{Status: "ok"})
	})
}
