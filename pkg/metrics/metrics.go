// Package metrics defines the Prometheus metric collectors used by the
// console and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the console.
type Metrics struct {
	BackendRequestsTotal    *prometheus.CounterVec
	BackendRequestDuration  *prometheus.HistogramVec
	BackendRequestsInFlight prometheus.Gauge
	RendersTotal            *prometheus.CounterVec
	ActionsTotal            *prometheus.CounterVec
	ChatExchangesTotal      *prometheus.CounterVec
	ActivityDroppedTotal    prometheus.Counter
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all collectors and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_backend_requests_total",
				Help: "Backend calls by call name and outcome.",
			},
			[]string{"call", "outcome"},
		),
		BackendRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "console_backend_request_duration_seconds",
				Help:    "Backend call latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"call"},
		),
		BackendRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "console_backend_requests_in_flight",
				Help: "Backend calls currently awaiting a response.",
			},
		),
		RendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_renders_total",
				Help: "Results-area renders by kind (success, error, mixed).",
			},
			[]string{"kind"},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_actions_total",
				Help: "Dispatched operator actions by name and outcome.",
			},
			[]string{"action", "outcome"},
		),
		ChatExchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "console_chat_exchanges_total",
				Help: "Assistant exchanges by outcome.",
			},
			[]string{"outcome"},
		),
		ActivityDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "console_activity_dropped_total",
				Help: "Activity events dropped because the buffer was full.",
			},
		),
	}

	reg.MustRegister(
		m.BackendRequestsTotal,
		m.BackendRequestDuration,
		m.BackendRequestsInFlight,
		m.RendersTotal,
		m.ActionsTotal,
		m.ChatExchangesTotal,
		m.ActivityDroppedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
