package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func registerDBMetrics(db *sql.DB) {
	prometheus.MustRegister(collectors.NewDBStatsCollector(db, "ledger"))
}
