// Package metrics provides client-side Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the Shopie client.
// Pass to components that need to record metrics. A nil *Metrics is valid
// and turns every record call into a no-op, so wiring stays optional.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	CartMutationsTotal *prometheus.CounterVec
	CheckoutsTotal     *prometheus.CounterVec
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shopie",
				Name:      "api_requests_total",
				Help:      "Total number of backend API requests",
			},
			[]string{"method", "status"}, // status=ok/http_error/transport_error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "shopie",
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CartMutationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shopie",
				Name:      "cart_mutations_total",
				Help:      "Total cart mutations by operation",
			},
			[]string{"op", "result"}, // op=add/update/remove/clear, result=ok/error
		),
		CheckoutsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "shopie",
				Name:      "checkouts_total",
				Help:      "Total checkout attempts by outcome",
			},
			[]string{"result"}, // result=ok/rejected/error
		),
	}
}

// RecordRequest records one API request outcome with its duration.
func (m *Metrics) RecordRequest(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordCartMutation records one cart mutation outcome.
func (m *Metrics) RecordCartMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CartMutationsTotal.WithLabelValues(op, result).Inc()
}

// RecordCheckout records one checkout outcome.
func (m *Metrics) RecordCheckout(result string) {
	if m == nil {
		return
	}
	m.CheckoutsTotal.WithLabelValues(result).Inc()
}
