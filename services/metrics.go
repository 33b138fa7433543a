package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics bündelt die Prometheus-Kennzahlen der Ingestion.
type Metrics struct {
	PublicationsCreated prometheus.Counter
	Conflicts           prometheus.Counter
	AuthorsSynthesized  prometheus.Counter
	Failures            *prometheus.CounterVec
	Duration            prometheus.Histogram
	SnapshotsExported   prometheus.Counter
}

// NewMetrics erstellt die Kennzahlen und registriert sie bei reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PublicationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubhub_publications_created_total",
			Help: "Total number of publications ingested.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubhub_publication_conflicts_total",
			Help: "Total number of ingestion requests rejected as duplicates.",
		}),
		AuthorsSynthesized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubhub_authors_synthesized_total",
			Help: "Total number of authors created with a generated name.",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubhub_ingestion_failures_total",
			Help: "Failed ingestion requests by reason.",
		}, []string{"reason"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pubhub_ingestion_duration_seconds",
			Help:    "Duration of publication ingestion.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pubhub_snapshots_exported_total",
			Help: "Total number of publication snapshots uploaded.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.PublicationsCreated, m.Conflicts, m.AuthorsSynthesized, m.Failures, m.Duration, m.SnapshotsExported)
	}
	return m
}
