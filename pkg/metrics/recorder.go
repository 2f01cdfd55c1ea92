package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder handles metrics recording and exposure
type Recorder struct {
	// API metrics
	apiRequestCounter   *prometheus.CounterVec
	apiLatencyHistogram *prometheus.HistogramVec

	// Pricing metrics
	pricingCounter *prometheus.CounterVec
	pricingLatency *prometheus.HistogramVec

	// Curve metrics
	curveBuildCounter *prometheus.CounterVec
	curveBuildLatency *prometheus.HistogramVec
	curvePillarsGauge *prometheus.GaugeVec

	// Feed metrics
	quoteUpdatesCounter *prometheus.CounterVec
	quoteAgeGauge       *prometheus.GaugeVec

	// Stream metrics
	wsClientsGauge    prometheus.Gauge
	wsMessagesCounter *prometheus.CounterVec
}

// NewRecorder creates a new metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{
		apiRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_api_requests_total",
				Help: "The total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		apiLatencyHistogram: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_api_latency_seconds",
				Help:    "API request latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "path"},
		),
		pricingCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_pricings_total",
				Help: "The total number of pricing calls",
			},
			[]string{"product", "outcome"},
		),
		pricingLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_pricing_latency_seconds",
				Help:    "Pricing call latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
			},
			[]string{"product"},
		),
		curveBuildCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_curve_builds_total",
				Help: "The total number of curve bootstraps",
			},
			[]string{"curve", "outcome"},
		),
		curveBuildLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_curve_build_latency_seconds",
				Help:    "Curve bootstrap latency distribution",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"curve"},
		),
		curvePillarsGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rates_curve_pillars",
				Help: "Number of pillars on a stored curve",
			},
			[]string{"curve"},
		),
		quoteUpdatesCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_quote_updates_total",
				Help: "The total number of feed quote updates",
			},
			[]string{"instrument"},
		),
		quoteAgeGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rates_quote_age_seconds",
				Help: "Age of the latest quote per instrument",
			},
			[]string{"instrument"},
		),
		wsClientsGauge: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rates_ws_clients",
				Help: "Number of connected websocket clients",
			},
		),
		wsMessagesCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_ws_messages_total",
				Help: "The total number of websocket messages sent",
			},
			[]string{"topic"},
		),
	}
}

// RecordAPIRequest records an API request with its status and duration
func (r *Recorder) RecordAPIRequest(method, path string, status int, duration time.Duration) {
	r.apiRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.apiLatencyHistogram.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPricing records a pricing call outcome and latency
func (r *Recorder) RecordPricing(product string, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.pricingCounter.WithLabelValues(product, outcome).Inc()
	r.pricingLatency.WithLabelValues(product).Observe(duration.Seconds())
}

// RecordCurveBuild records a curve bootstrap outcome and latency
func (r *Recorder) RecordCurveBuild(curveID string, pillars int, err error, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.curveBuildCounter.WithLabelValues(curveID, outcome).Inc()
	r.curveBuildLatency.WithLabelValues(curveID).Observe(duration.Seconds())
	if err == nil {
		r.curvePillarsGauge.WithLabelValues(curveID).Set(float64(pillars))
	}
}

// RecordQuoteUpdate records an applied feed quote
func (r *Recorder) RecordQuoteUpdate(instrument string, age time.Duration) {
	r.quoteUpdatesCounter.WithLabelValues(instrument).Inc()
	r.quoteAgeGauge.WithLabelValues(instrument).Set(age.Seconds())
}

// SetWSClients sets the connected websocket client gauge
func (r *Recorder) SetWSClients(n int) {
	r.wsClientsGauge.Set(float64(n))
}

// RecordWSMessage records an outbound websocket message
func (r *Recorder) RecordWSMessage(topic string) {
	r.wsMessagesCounter.WithLabelValues(topic).Inc()
}
