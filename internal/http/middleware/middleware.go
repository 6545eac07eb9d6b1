// Package middleware wraps the router with panic recovery, access logging
// and CORS.
package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
)

// recoveryLogger adapts slog to gorilla's RecoveryHandlerLogger.
type recoveryLogger struct {
	log *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error("recovered from panic", slog.String("panic", fmt.Sprint(v...)))
}

// Recover turns a panicking handler into a 500 response.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: log}),
		handlers.PrintRecoveryStack(false),
	)
}

// AccessLog logs one line per request after it completes.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
			log.Info("request",
				slog.String("method", p.Request.Method),
				slog.String("path", p.URL.Path),
				slog.Int("status", p.StatusCode),
				slog.Int("size", p.Size),
				slog.Duration("duration", time.Since(p.TimeStamp)),
				slog.String("remote", p.Request.RemoteAddr),
			)
		})
	}
}

// CORS allows browser clients from origins to call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler
}

// Chain applies mws so that the first one is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
