// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AnalysisScanFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_scan_failures_total",
			Help: "Sub-scans that failed and contributed no results",
		},
		[]string{"engine", "scan"},
	)

	AnalysisScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_scan_duration_seconds",
			Help:    "Duration of individual analysis sub-scans in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"engine", "scan"},
	)

	AnalysisPatternsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_patterns_emitted_total",
			Help: "Citation patterns emitted by pattern type",
		},
		[]string{"pattern_type"},
	)

	AnalysisGapsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_gaps_emitted_total",
			Help: "Content gaps emitted by gap type",
		},
		[]string{"gap_type"},
	)

	AnalysisCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_cache_lookups_total",
			Help: "Result cache lookups by outcome (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveScan records the outcome of one sub-scan run.
func ObserveScan(engine, scan string, started time.Time, failed bool) {
	AnalysisScanDuration.WithLabelValues(engine, scan).Observe(time.Since(started).Seconds())
	if failed {
		AnalysisScanFailures.WithLabelValues(engine, scan).Inc()
	}
}

// ObserveJob records a finished worker job.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode != "" {
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
		return
	}
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
}
