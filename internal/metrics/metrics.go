package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the service's prometheus collectors.
type Metrics struct {
	UploadsTotal      prometheus.Counter
	UploadsRejected   prometheus.Counter
	RowsIngested      prometheus.Counter
	RowsSkipped       prometheus.Counter
	DatasetsEvicted   prometheus.Counter
	AnalyticsDuration prometheus.Histogram
}

// New creates and registers all collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equipviz_uploads_total",
			Help: "Datasets successfully ingested.",
		}),
		UploadsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equipviz_uploads_rejected_total",
			Help: "Uploads refused as malformed or empty.",
		}),
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equipviz_rows_ingested_total",
			Help: "Equipment rows stored across all uploads.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equipviz_rows_skipped_total",
			Help: "CSV rows rejected during validation.",
		}),
		DatasetsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equipviz_datasets_evicted_total",
			Help: "Datasets removed by the retention limit.",
		}),
		AnalyticsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "equipviz_analytics_duration_seconds",
			Help:    "Time spent computing analytics summaries.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	reg.MustRegister(
		m.UploadsTotal,
		m.UploadsRejected,
		m.RowsIngested,
		m.RowsSkipped,
		m.DatasetsEvicted,
		m.AnalyticsDuration,
	)
	return m
}
