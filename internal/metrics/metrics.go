package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	Registry *prometheus.Registry

	RefreshTicks    prometheus.Counter
	RefreshFailures *prometheus.CounterVec // labels: kind
	QuoteFetchDur   prometheus.Histogram
	LastPrice       *prometheus.GaugeVec   // labels: symbol
	PercentChange   *prometheus.GaugeVec   // labels: symbol
	ChartRenders    *prometheus.CounterVec // labels: mode=create|update
	Suggestions     *prometheus.CounterVec // labels: action
	Predictions     *prometheus.CounterVec // labels: result=ok|error
	WSClients       prometheus.Gauge
}

// NewMetrics creates all metrics on a private registry so several instances
// can coexist (tests, multiple dashboards in one process).
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RefreshTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockpulse_refresh_ticks_total",
			Help: "Refresh ticks started",
		}),
		RefreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_refresh_failures_total",
			Help: "Refresh ticks abandoned, by failure kind",
		}, []string{"kind"}),
		QuoteFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockpulse_quote_fetch_duration_seconds",
			Help:    "Quote provider round trip latency",
			Buckets: prometheus.DefBuckets,
		}),
		LastPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockpulse_last_price",
			Help: "Open of the latest bar",
		}, []string{"symbol"}),
		PercentChange: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockpulse_percent_change",
			Help: "Percent change of the latest bar",
		}, []string{"symbol"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_chart_renders_total",
			Help: "Chart renders by mode",
		}, []string{"mode"}),
		Suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_suggestions_total",
			Help: "Suggestions shown by action",
		}, []string{"action"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_predictions_total",
			Help: "Prediction service calls by result",
		}, []string{"result"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockpulse_ws_clients",
			Help: "Connected dashboard WebSocket clients",
		}),
	}

	m.Registry.MustRegister(
		m.RefreshTicks,
		m.RefreshFailures,
		m.QuoteFetchDur,
		m.LastPrice,
		m.PercentChange,
		m.ChartRenders,
		m.Suggestions,
		m.Predictions,
		m.WSClients,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
