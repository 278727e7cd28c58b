package server

import (
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// corsHandler allows the listed origins, or any origin for "*". The
// request origin is echoed back in both cases.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return allowAll || slices.Contains(origins, origin)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{cacheHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// accessLog logs one line per request with status, size and duration.
func accessLog(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logFn := logger.Info
			switch {
			case m.Code >= 500:
				logFn = logger.Error
			case m.Code >= 400:
				logFn = logger.Warn
			}
			logFn("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", m.Code,
				"bytes", m.Written,
				"duration", m.Duration,
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
