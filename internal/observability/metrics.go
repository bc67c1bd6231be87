package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "journal",
		Subsystem: "persistence",
		Name:      "last_record_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent record write committed to Postgres.",
	})
	batchRecordsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "journal",
		Subsystem: "sync",
		Name:      "batch_records_synced_total",
		Help:      "Total records applied through batch sync calls.",
	})
	batchCallsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "journal",
		Subsystem: "sync",
		Name:      "batch_calls_total",
		Help:      "Total successful batch sync calls.",
	})
)

func init() {
	prometheus.MustRegister(recordPersistGauge, batchRecordsCounter, batchCallsCounter)
}

// RecordPersisted updates the persistence watermark gauge.
func RecordPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	recordPersistGauge.Set(float64(ts.Unix()))
}

// RecordBatchSynced counts one successful batch and the records it applied.
func RecordBatchSynced(records int) {
	batchCallsCounter.Inc()
	batchRecordsCounter.Add(float64(records))
}
