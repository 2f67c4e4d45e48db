package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if statementGenerateTotal != nil {
		t.Skip("metrics already initialised by another test")
	}
	ObserveStatementGenerate(ResultSuccess, time.Millisecond)
	ObserveStatementTransactions(3)
	ObserveStatementExport("csv", ResultError, time.Millisecond)
}

func TestObserveStatementGenerateCounts(t *testing.T) {
	Init(nil, zap.NewNop())
	before := testutil.ToFloat64(statementGenerateTotal.WithLabelValues(ResultNotFound))
	ObserveStatementGenerate(ResultNotFound, 5*time.Millisecond)
	after := testutil.ToFloat64(statementGenerateTotal.WithLabelValues(ResultNotFound))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}

	beforeExport := testutil.ToFloat64(statementExportTotal.WithLabelValues("unknown", ResultSuccess))
	ObserveStatementExport("", "", time.Millisecond)
	afterExport := testutil.ToFloat64(statementExportTotal.WithLabelValues("unknown", ResultSuccess))
	if afterExport-beforeExport != 1 {
		t.Fatalf("expected export defaults to be applied")
	}
}
