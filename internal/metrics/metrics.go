package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/xp-ledger/internal/models"
)

// Import outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics are the counters the API reports on /metrics.
type Metrics struct {
	registry      *prometheus.Registry
	imports       *prometheus.CounterVec
	records       *prometheus.CounterVec
	parseDuration prometheus.Histogram
	cycleBuilds   prometheus.Counter
	cycles        prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xpledger_imports_total",
			Help: "Export imports by source and outcome.",
		}, []string{"source", "outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xpledger_records_total",
			Help: "Records recognised in imports by kind.",
		}, []string{"kind"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xpledger_parse_duration_seconds",
			Help:    "Time spent extracting and parsing one export.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		cycleBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xpledger_cycle_builds_total",
			Help: "Qualification cycle chains built.",
		}),
		cycles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xpledger_cycles_per_build",
			Help:    "Number of cycles in each built chain.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 60},
		}),
	}
	reg.MustRegister(
		m.imports, m.records, m.parseDuration, m.cycleBuilds, m.cycles,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveImport records one import attempt. result may be nil on error.
func (m *Metrics) ObserveImport(source, outcome string, elapsed time.Duration, result *models.ParseResult) {
	m.imports.WithLabelValues(source, outcome).Inc()
	m.parseDuration.Observe(elapsed.Seconds())
	if result == nil {
		return
	}
	m.records.WithLabelValues("flight").Add(float64(len(result.Flights)))
	m.records.WithLabelValues("earning").Add(float64(len(result.Earnings)))
	m.records.WithLabelValues("requalification").Add(float64(len(result.Requalifications)))
}

// ObserveCycles records one cycle chain build.
func (m *Metrics) ObserveCycles(n int) {
	m.cycleBuilds.Inc()
	m.cycles.Observe(float64(n))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
