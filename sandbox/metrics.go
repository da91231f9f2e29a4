package sandbox

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the sandbox collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	paymentMethods *prometheus.CounterVec
	transactions   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardvault",
			Subsystem: "sandbox",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cardvault",
			Subsystem: "sandbox",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		paymentMethods: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardvault",
			Subsystem: "sandbox",
			Name:      "payment_method_actions_total",
			Help:      "Payment method actions by action and validity of the stored card",
		}, []string{"action", "valid"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardvault",
			Subsystem: "sandbox",
			Name:      "transactions_total",
			Help:      "Processed transactions by type and outcome",
		}, []string{"type", "outcome"}),
	}
}

func (m *Metrics) paymentMethod(action string, valid bool) {
	if m == nil {
		return
	}
	m.paymentMethods.WithLabelValues(action, strconv.FormatBool(valid)).Inc()
}

func (m *Metrics) transaction(typ string, success bool) {
	if m == nil {
		return
	}
	outcome := "declined"
	if success {
		outcome = "success"
	}
	m.transactions.WithLabelValues(typ, outcome).Inc()
}

// Middleware counts requests by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
