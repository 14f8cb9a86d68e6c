package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "altimeter_grid"

// Metrics holds the Prometheus counters, histograms, and gauges for a gridding run.
type Metrics struct {
	Tiles           *prometheus.CounterVec // labels: outcome={ok,absent,short,malformed}
	FamilyFallbacks prometheus.Counter
	RawRecords      prometheus.Counter
	QCRecords       prometheus.Counter

	HoursProcessed prometheus.Counter
	HoursSkipped   prometheus.Counter
	Collocated     prometheus.Counter
	OutputRecords  prometheus.Counter

	StageDuration   *prometheus.HistogramVec // labels: stage={grid,ingest,qc,collocate,write,publish}
	PipelineRunning prometheus.Gauge
}

func newMetrics(helps bool) *Metrics {
	help := func(s string) string {
		if helps {
			return s
		}
		return ""
	}
	return &Metrics{
		Tiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tiles_total",
			Help:      help("Tiles visited by read outcome."),
		}, []string{"outcome"}),
		FamilyFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "family_fallbacks_total",
			Help:      help("Tiles read with the Ka wave height family because Ku was absent."),
		}),
		RawRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_records_total",
			Help:      help("Along-track records accumulated from tiles."),
		}),
		QCRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qc_records_total",
			Help:      help("Records passing quality control."),
		}),
		HoursProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hours_processed_total",
			Help:      help("Hourly buckets on the collocation axis."),
		}),
		HoursSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hours_skipped_total",
			Help:      help("Hourly buckets without enough supporting records."),
		}),
		Collocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collocated_records_total",
			Help:      help("Grid point records produced by collocation."),
		}),
		OutputRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_records_total",
			Help:      help("Records written after the final sanity filter."),
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      help("Wall time of each pipeline stage."),
			Buckets:   []float64{0.1, 1, 10, 60, 300, 900, 3600, 10800},
		}, []string{"stage"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 while a run is in progress, 0 otherwise."),
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Tiles,
		m.FamilyFallbacks,
		m.RawRecords,
		m.QCRecords,
		m.HoursProcessed,
		m.HoursSkipped,
		m.Collocated,
		m.OutputRecords,
		m.StageDuration,
		m.PipelineRunning,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics(false)
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

// WriteTextfile writes every metric in the default registry to path in the
// node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
