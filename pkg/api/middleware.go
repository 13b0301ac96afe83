package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/tyre-strategy/log"
)

const RequestIDHeader = "X-Request-Id"

var meter = otel.Meter("api")

// requestID attaches a request scoped logger carrying the request id.
// An id sent by the client is kept.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		l := h.logger.With(log.String("requestId", id))
		next.ServeHTTP(w, r.WithContext(log.AddToContext(r.Context(), l)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) metrics(next http.Handler) http.Handler {
	requests, _ := meter.Int64Counter("api_requests",
		metric.WithDescription("number of api requests"))
	latency, _ := meter.Float64Histogram("api_request_duration",
		metric.WithDescription("duration of api requests"),
		metric.WithUnit("s"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		attrs := metric.WithAttributes(
			attribute.String("route", route),
			attribute.Int("status", rec.status))
		requests.Add(r.Context(), 1, attrs)
		latency.Record(r.Context(), time.Since(start).Seconds(), attrs)
		log.GetFromContext(r.Context()).Debug("request",
			log.String("method", r.Method),
			log.String("route", route),
			log.Int("status", rec.status),
			log.Duration("duration", time.Since(start)))
	})
}
