package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the assessment service.
type Metrics struct {
	Assessments       *prometheus.CounterVec // labels: verdict={flood,no_flood}, source={form,api,cli,stream}
	RejectedRequests  *prometheus.CounterVec // labels: source, reason={out_of_range,unknown_category,malformed}
	InferenceErrors   prometheus.Counter
	InferenceDuration prometheus.Histogram
	ArtifactsLoaded   prometheus.Gauge

	// Assessment stream metrics.
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	StreamErrors     prometheus.Counter
	StreamRunning    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all service metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()

	reg.MustRegister(
		m.Assessments,
		m.RejectedRequests,
		m.InferenceErrors,
		m.InferenceDuration,
		m.ArtifactsLoaded,
		m.MessagesConsumed,
		m.MessagesProduced,
		m.StreamErrors,
		m.StreamRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "assessments_total",
			Help:      "Completed assessments by verdict and entry point.",
		}, []string{"verdict", "source"}),
		RejectedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "rejected_requests_total",
			Help:      "Submissions rejected before inference, by entry point and reason.",
		}, []string{"source", "reason"}),
		InferenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "inference_errors_total",
			Help:      "Scaler or classifier failures.",
		}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_risk",
			Name:      "inference_duration_seconds",
			Help:      "Duration of the normalize and classify steps.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ArtifactsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "artifacts_loaded",
			Help:      "1 once the scaler and classifier are loaded.",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "stream_messages_consumed_total",
			Help:      "Total messages read from the request topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "stream_messages_produced_total",
			Help:      "Total assessments written to the result topic.",
		}),
		StreamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_risk",
			Name:      "stream_errors_total",
			Help:      "Stream messages that could not be assessed or published.",
		}),
		StreamRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_risk",
			Name:      "stream_running",
			Help:      "1 when the assessment stream is active, 0 when shut down.",
		}),
	}
}
