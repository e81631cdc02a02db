// Package metrics provides Prometheus metrics for remote file
// operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhdfs_operations_total",
			Help: "Total number of WebHDFS operations",
		},
		[]string{"op", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhdfs_operation_duration_seconds",
			Help:    "WebHDFS operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhdfs_bytes_downloaded_total",
			Help: "Total bytes read from remote files",
		},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhdfs_bytes_uploaded_total",
			Help: "Total bytes written to remote files",
		},
	)
)

// RecordOperation records the outcome of one operation.
func RecordOperation(op, status string) {
	operationsTotal.WithLabelValues(op, status).Inc()
}

// ObserveDuration records the duration of one operation.
func ObserveDuration(op string, d time.Duration) {
	operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// AddBytesDownloaded adds to the download byte counter.
func AddBytesDownloaded(n int64) {
	bytesDownloaded.Add(float64(n))
}

// AddBytesUploaded adds to the upload byte counter.
func AddBytesUploaded(n int64) {
	bytesUploaded.Add(float64(n))
}
