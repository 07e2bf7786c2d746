package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"flavourkitchen/logger"
	"flavourkitchen/metrics"
)

// RequestIDHeader carries the request id back to the caller.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// routeName is the mux path template, so metrics stay bounded by route
// rather than by slug.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Observe assigns a request id, recovers panics, logs each request and
// records request metrics.
func Observe(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(logger.ContextWithRequestID(r.Context(), id))
			rec := &statusRecorder{ResponseWriter: w}
			route := routeName(r)

			defer func() {
				if v := recover(); v != nil {
					log.ErrorContext(r.Context(), "panic serving request", "request_id", id, "panic", v)
					if rec.status == 0 {
						http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
					}
				}
				status := rec.status
				if status == 0 {
					status = http.StatusOK
				}
				elapsed := time.Since(start)
				metrics.RequestTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
				metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
				log.InfoContext(r.Context(), "request",
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"route", route,
					"status", status,
					"duration", elapsed,
				)
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
