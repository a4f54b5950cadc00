package internalhttp

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		ip, err := getIP(r)
		if err != nil {
			log.Errorf("failed to get client IP: %v", err)
		}
		log.WithField("ip", ip).WithField("method", r.Method).WithField("path", r.URL.Path).
			WithField("status", rec.status).WithField("request_id", requestID).
			WithField("user-agent", r.Header.Get("user-agent")).
			WithField("latency", time.Since(start)).
			Info("http request processed")
	})
}

// corsMiddleware allows the calendar frontend to be served from any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(next)
}
