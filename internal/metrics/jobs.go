// Package metrics exposes Prometheus instrumentation for backup and
// restore runs and for the database connection pool.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapback_backup_runs_total",
			Help: "Total number of backup runs by environment and outcome",
		},
		[]string{"environment", "status"},
	)

	backupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapback_backup_duration_seconds",
			Help:    "Backup run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"environment"},
	)

	restoreRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapback_restore_runs_total",
			Help: "Total number of restore runs by outcome",
		},
		[]string{"status"},
	)

	restoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapback_restore_duration_seconds",
			Help:    "Restore run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
)

// ObserveBackup records the outcome and duration of one backup run.
func ObserveBackup(environment string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	backupRunsTotal.WithLabelValues(environment, status).Inc()
	backupDuration.WithLabelValues(environment).Observe(time.Since(started).Seconds())
}

// ObserveRestore records the outcome and duration of one restore run.
func ObserveRestore(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	restoreRunsTotal.WithLabelValues(status).Inc()
	restoreDuration.Observe(time.Since(started).Seconds())
}
