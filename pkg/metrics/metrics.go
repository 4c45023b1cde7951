package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Ingestion metrics
	RowsIngested  *prometheus.CounterVec
	RowErrors     *prometheus.CounterVec
	SyntheticIDs  prometheus.Counter
	Reloads       prometheus.Counter
	ReloadLatency prometheus.Histogram

	// Snapshot metrics
	PatientsLoaded  prometheus.Gauge
	GestionesLoaded prometheus.Gauge

	// Upstream proxy metrics
	UpstreamRequests *prometheus.CounterVec
}

// New creates and registers all application metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		RowsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Total number of CSV rows accepted into the snapshot",
		}, []string{"source"}),
		RowErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_errors_total",
			Help:      "Total number of CSV rows that needed defaulting or were skipped",
		}, []string{"source"}),
		SyntheticIDs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthetic_episode_ids_total",
			Help:      "Rows ingested without an episode column, assigned a generated id",
		}),
		Reloads: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Total number of snapshot rebuilds",
		}),
		ReloadLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Time spent rebuilding the in-memory snapshot",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		PatientsLoaded: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patients_loaded",
			Help:      "Patient episodes in the current snapshot",
		}),
		GestionesLoaded: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gestiones_loaded",
			Help:      "Case-management records in the current snapshot",
		}),
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests forwarded to the remote ingestion backend",
		}, []string{"status"}),
	}
}
