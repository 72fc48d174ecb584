package commonsense

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records request outcomes and latency. It is safe for concurrent use
// and may be shared by several clients.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        *prometheus.GaugeVec
}

// NewMetrics registers the collectors on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "commonsense_requests_total",
				Help: "Total number of API requests by platform and outcome",
			},
			[]string{"platform", "outcome"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commonsense_request_duration_seconds",
				Help:    "Duration of API round trips in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform", "outcome"},
		),
		inFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "commonsense_requests_in_flight",
				Help: "Number of API requests currently in flight",
			},
			[]string{"platform"},
		),
	}
}

func (m *Metrics) start(platform Platform) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(platform.String()).Inc()
}

// finish records one completed call. outcome is "success" or an ErrorKind name.
func (m *Metrics) finish(platform Platform, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(platform.String()).Dec()
	m.requestsTotal.WithLabelValues(platform.String(), outcome).Inc()
	m.requestDuration.WithLabelValues(platform.String(), outcome).Observe(d.Seconds())
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return "error"
}
