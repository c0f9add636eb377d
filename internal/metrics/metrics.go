// Package metrics holds the prometheus instruments shared by the server,
// the tracker and the store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "liftlog"

// Manager holds the Prometheus collectors the server and tracker update.
type Manager struct {
	// counters
	CounterRequests    *prometheus.CounterVec
	CounterSetsSaved   prometheus.Counter
	CounterSaves       *prometheus.CounterVec
	CounterStoreErrors *prometheus.CounterVec
	CounterImports     *prometheus.CounterVec

	// gauges
	GaugeHistoryRows prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
	HistSaveDuration    prometheus.Histogram
}

// NewRegistry returns a registry with the build info, Go runtime and process
// collectors, plus any extra collectors given.
func NewRegistry(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	reg.MustRegister(extra...)
	return reg
}

// NewTestManager returns a Manager on a throwaway registry.
func NewTestManager() *Manager {
	return NewManager("test", prometheus.NewRegistry())
}

// NewTestManagerAndRegistry is NewTestManager, also returning the registry
// so tests can gather from it.
func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("test", reg), reg
}

// NewManager registers every collector under subsystem on reg.
func NewManager(subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		CounterSetsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_saved_total",
			Help:      "The total number of set rows written by upserts",
		}),
		CounterSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "saves_total",
			Help:      "The total number of full store writes",
		}, []string{"kind"}),
		CounterStoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_errors_total",
			Help:      "The total number of failed store calls",
		}, []string{"op"}),
		CounterImports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "imports_total",
			Help:      "The total number of import requests",
		}, []string{"source", "status"}),
		GaugeHistoryRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_rows",
			Help:      "Number of rows in the loaded history",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"route"}),
		HistSaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "save_duration_seconds",
			Help:      "Duration of full history writes in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}
}
