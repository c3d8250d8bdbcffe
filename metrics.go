package citysuggest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// loaderMetrics is nil when metrics are disabled; its methods are nil-safe.
type loaderMetrics struct {
	partitions *prometheus.CounterVec
	records    prometheus.Counter
	duration   prometheus.Histogram
}

func newLoaderMetrics(reg prometheus.Registerer) *loaderMetrics {
	if reg == nil {
		return nil
	}

	return &loaderMetrics{
		partitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "citysuggest",
			Name:      "partitions_settled_total",
			Help:      "Number of partitions settled, by outcome (loaded or failed)",
		}, []string{"outcome"}),
		records: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "citysuggest",
			Name:      "records_loaded_total",
			Help:      "Number of city records appended to the store",
		}),
		duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "citysuggest",
			Name:      "load_duration_seconds",
			Help:      "Time from the start of a load until every partition settled",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

func (m *loaderMetrics) loaded(records int) {
	if m == nil {
		return
	}
	m.partitions.WithLabelValues("loaded").Inc()
	m.records.Add(float64(records))
}

func (m *loaderMetrics) failed() {
	if m == nil {
		return
	}
	m.partitions.WithLabelValues("failed").Inc()
}

func (m *loaderMetrics) finished(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
