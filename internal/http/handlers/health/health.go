// Package health reports whether the service can reach its store.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/studentdb-api/internal/storage"
	"github.com/aanand-mishra/studentdb-api/internal/utils/response"
)

const pingTimeout = 2 * time.Second

// Check handles GET /healthz
//
//	200 { "status": "ok" }
//	503 { "status": "error", "error": "..." }
func Check(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK})
	}
}
