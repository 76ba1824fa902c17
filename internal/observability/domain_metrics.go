package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
	OutcomeSkipped  = "skipped"
)

var (
	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlassist_model_calls_total",
			Help: "Total number of generative model calls by provider, operation and outcome.",
		},
		[]string{"provider", "operation", "outcome"},
	)
	modelCallLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlassist_model_call_duration_seconds",
			Help:    "Generative model call latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider", "operation"},
	)
	sqlExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlassist_sql_executions_total",
			Help: "Total number of executed statements by outcome (ok, error, rejected).",
		},
		[]string{"outcome"},
	)
	sqlExecutionLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlassist_sql_execution_latency_ms",
			Help:    "Statement execution latency in milliseconds, including connection open and close.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)
	sqlRowsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlassist_sql_rows_returned",
			Help:    "Rows returned per successful statement.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	loaderFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlassist_loader_files_total",
			Help: "Total number of source files seen by the loader by format and outcome.",
		},
		[]string{"format", "outcome"},
	)
	loaderRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqlassist_loader_rows_total",
			Help: "Total number of rows written by the loader.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		modelCallsTotal,
		modelCallLatencySeconds,
		sqlExecutionsTotal,
		sqlExecutionLatencyMs,
		sqlRowsReturned,
		loaderFilesTotal,
		loaderRowsTotal,
	)
}

func ObserveModelCall(provider, operation string, err error, elapsed time.Duration) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	modelCallsTotal.WithLabelValues(provider, operation, outcome).Inc()
	modelCallLatencySeconds.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

func ObserveSQLExecution(outcome string, rows int, elapsed time.Duration) {
	sqlExecutionsTotal.WithLabelValues(outcome).Inc()
	sqlExecutionLatencyMs.Observe(float64(elapsed.Milliseconds()))
	if outcome == OutcomeOK {
		sqlRowsReturned.Observe(float64(rows))
	}
}

func ObserveLoaderFile(format, outcome string, rows int) {
	if format == "" {
		format = "unknown"
	}
	loaderFilesTotal.WithLabelValues(format, outcome).Inc()
	if rows > 0 {
		loaderRowsTotal.Add(float64(rows))
	}
}
