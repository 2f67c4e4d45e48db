package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	metricPrefix = "ledger_"

	resultSuccess  = "success"
	resultError    = "error"
	resultNotFound = "not_found"
)

var (
	registerOnce sync.Once

	statementGenerateTotal   *prometheus.CounterVec
	statementGenerateLatency *prometheus.HistogramVec
	statementTransactions    prometheus.Histogram
	statementExportTotal     *prometheus.CounterVec
	statementExportLatency   *prometheus.HistogramVec
)

// Init registers statement metrics and, when db is set, connection pool gauges.
func Init(db *sql.DB, logger *zap.Logger) {
	registerOnce.Do(func() {
		statementGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_generate_total",
				Help: "Total customer statement computations by result",
			},
			[]string{"result"},
		)
		statementGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_generate_latency_seconds",
				Help:    "Customer statement computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		statementTransactions = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_transactions",
				Help:    "Number of transactions per computed statement",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		)
		statementExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_export_total",
				Help: "Total statement export operations by format and result",
			},
			[]string{"format", "result"},
		)
		statementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_export_latency_seconds",
				Help:    "Statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			statementGenerateTotal,
			statementGenerateLatency,
			statementTransactions,
			statementExportTotal,
			statementExportLatency,
		)

		if db != nil {
			registerDBMetrics(db)
		}
		if logger != nil {
			logger.Info("metrics registered", zap.Bool("db_stats", db != nil))
		}
	})
}

// ObserveStatementGenerate records statement latency and result.
func ObserveStatementGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if statementGenerateTotal != nil {
		statementGenerateTotal.WithLabelValues(result).Inc()
	}
	if statementGenerateLatency != nil {
		statementGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveStatementTransactions records the size of a computed statement.
func ObserveStatementTransactions(count int) {
	if count < 0 {
		count = 0
	}
	if statementTransactions != nil {
		statementTransactions.Observe(float64(count))
	}
}

// ObserveStatementExport records export latency and result.
func ObserveStatementExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if statementExportTotal != nil {
		statementExportTotal.WithLabelValues(format, result).Inc()
	}
	if statementExportLatency != nil {
		statementExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultNotFound = resultNotFound
)
