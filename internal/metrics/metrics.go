package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels batches that produced a summary.
	OutcomeSuccess = "success"
	// OutcomeError labels batches that failed (ingestion, schema, or service
	// issues).
	OutcomeError = "error"
)

var (
	batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exosift",
			Name:      "batches_total",
			Help:      "Total number of classification batches handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	batchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "exosift",
			Name:      "batch_seconds",
			Help:      "Batch classification latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	recordsClassifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exosift",
			Name:      "records_classified_total",
			Help:      "Total records classified, partitioned by strategy source.",
		},
		[]string{"source"},
	)
)

// Register attaches exosift collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		batchesTotal,
		batchDurationSeconds,
		recordsClassifiedTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveBatch records a batch duration and outcome label.
func ObserveBatch(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	batchesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	batchDurationSeconds.Observe(duration.Seconds())
}

// CountRecords accumulates classified record counts per strategy.
func CountRecords(source string, count int) {
	if count <= 0 {
		return
	}
	recordsClassifiedTotal.WithLabelValues(source).Add(float64(count))
}
