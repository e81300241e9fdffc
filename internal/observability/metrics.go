package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// anomaly engine pipeline.
type Metrics struct {
	ScansConsumed   prometheus.Counter
	ResultsProduced prometheus.Counter
	TransformErrors prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Engine metrics.
	AnomaliesDetected *prometheus.CounterVec // labels: classification={foundation,pipe,metal_debris,unknown}
	GroupsPerScan     prometheus.Histogram
	DetectionDuration prometheus.Histogram

	// Site-context metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScansConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "anomaly_engine",
			Name:      "scans_consumed_total",
			Help:      "Total scan batches read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "anomaly_engine",
			Name:      "results_produced_total",
			Help:      "Total survey results written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "anomaly_engine",
			Name:      "transform_errors_total",
			Help:      "Total scan transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "anomaly_engine",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anomaly_engine",
			Name:      "batch_size",
			Help:      "Number of scan messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anomaly_engine",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AnomaliesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anomaly_engine",
			Name:      "anomalies_detected_total",
			Help:      "Detected anomalies by classification.",
		}, []string{"classification"}),
		GroupsPerScan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anomaly_engine",
			Name:      "groups_per_scan",
			Help:      "Number of proximity groups produced per scan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
		DetectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anomaly_engine",
			Name:      "detection_duration_seconds",
			Help:      "Wall-clock duration of the detection pass per scan.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anomaly_engine",
			Name:      "geocode_requests_total",
			Help:      "Site-context API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anomaly_engine",
			Name:      "geocode_cache_total",
			Help:      "Site-context cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "anomaly_engine",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "anomaly_engine",
			Name:      "geocode_enabled",
			Help:      "1 when site-context enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ScansConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.AnomaliesDetected,
		m.GroupsPerScan,
		m.DetectionDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ScansConsumed:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "anomaly_engine", Name: "scans_consumed_total"}),
		ResultsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "anomaly_engine", Name: "results_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "anomaly_engine", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "anomaly_engine", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "anomaly_engine", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "anomaly_engine", Name: "batch_processing_duration_seconds"}),
		AnomaliesDetected:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "anomaly_engine", Name: "anomalies_detected_total"}, []string{"classification"}),
		GroupsPerScan:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "anomaly_engine", Name: "groups_per_scan"}),
		DetectionDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "anomaly_engine", Name: "detection_duration_seconds"}),
		GeocodeRequests:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "anomaly_engine", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "anomaly_engine", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "anomaly_engine", Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "anomaly_engine", Name: "geocode_enabled"}),
	}
}
