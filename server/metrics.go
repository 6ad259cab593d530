package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Auth event labels
const (
	eventLoginSucceeded    = "login_succeeded"
	eventLoginFailed       = "login_failed"
	eventRegistered        = "registered"
	eventRefreshSucceeded  = "refresh_succeeded"
	eventRefreshFailed     = "refresh_failed"
	eventLoggedOut         = "logged_out"
	eventPasswordChanged   = "password_changed"
	eventEmailVerified     = "email_verified"
	eventRateLimited       = "rate_limited"
	eventValidationFailure = "validation_failed"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	events   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churchai",
			Subsystem: "auth",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "churchai",
			Subsystem: "auth",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "churchai",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Authentication outcomes.",
		}, []string{"event"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.events} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "[newMetrics] Register")
		}
	}
	return m, nil
}

func (s *Server) MetricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
