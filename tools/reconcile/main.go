package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	statementapp "ledger-cloud/internal/statement/application"
	statement "ledger-cloud/internal/statement/domain"
	statementrepo "ledger-cloud/internal/statement/infrastructure/postgres"
	statementinterfaces "ledger-cloud/internal/statement/interfaces"
)

type config struct {
	dsn         string
	tenantID    int64
	customerID  int64
	from        string
	to          string
	includeZero bool
	outDir      string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns 2 for setup failures and 1 when the statement breaks a ledger check.
func run(args []string) int {
	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}
	from, err := statement.ParseDate(cfg.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -from:", err)
		return 2
	}
	to, err := statement.ParseDate(cfg.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -to:", err)
		return 2
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "create out dir:", err)
		return 2
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		logger.Error("db open", zap.Error(err))
		return 2
	}
	defer db.Close()

	store := statementrepo.NewStore(db)
	svc, err := statementapp.NewStatementService(store.Customers, store.Invoices, store.Receipts, statementapp.WithSnapshot(store))
	if err != nil {
		logger.Error("statement service", zap.Error(err))
		return 2
	}

	q := statementapp.DefaultQuery(cfg.customerID, cfg.tenantID, from, to)
	q.IncludeZeroBalanceTransactions = cfg.includeZero

	stmt, violations, err := reconcile(context.Background(), svc, q)
	if err != nil {
		logger.Error("reconcile", zap.Error(err))
		return 2
	}
	if err := writeOutputs(cfg.outDir, stmt); err != nil {
		logger.Error("write outputs", zap.Error(err))
		return 2
	}

	logger.Info("statement reconciled",
		zap.Int64("customer_id", cfg.customerID),
		zap.String("opening", stmt.OpeningBalance.String()),
		zap.String("closing", stmt.ClosingBalance.String()),
		zap.Int("transactions", len(stmt.Transactions)),
		zap.Int("violations", len(violations)),
		zap.String("out", cfg.outDir),
	)
	if len(violations) > 0 {
		for _, v := range violations {
			logger.Error("violation", zap.String("detail", v))
		}
		return 1
	}
	return 0
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.StringVar(&cfg.dsn, "pg-dsn", getenvDefault("PG_DSN", getenvDefault("DATABASE_URL", "")), "Postgres DSN")
	fs.Int64Var(&cfg.tenantID, "tenant-id", getenvInt64Default("TENANT_ID", 0), "tenant id")
	fs.Int64Var(&cfg.customerID, "customer-id", 0, "customer id")
	fs.StringVar(&cfg.from, "from", "", "window start (YYYY-MM-DD)")
	fs.StringVar(&cfg.to, "to", "", "window end, inclusive (YYYY-MM-DD)")
	fs.BoolVar(&cfg.includeZero, "include-zero", true, "keep zero-amount transactions")
	fs.StringVar(&cfg.outDir, "out", "./out", "output directory")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.dsn == "" {
		return cfg, errors.New("missing -pg-dsn or PG_DSN/DATABASE_URL")
	}
	if cfg.tenantID <= 0 {
		return cfg, errors.New("missing -tenant-id or TENANT_ID")
	}
	if cfg.customerID <= 0 {
		return cfg, errors.New("missing -customer-id")
	}
	if cfg.from == "" || cfg.to == "" {
		return cfg, errors.New("missing -from/-to (YYYY-MM-DD)")
	}
	return cfg, nil
}

// reconcile computes the statement and collects every ledger check that fails.
func reconcile(ctx context.Context, svc *statementapp.StatementService, q statementapp.StatementQuery) (*statement.Statement, []string, error) {
	stmt, err := svc.GetStatement(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	var violations []string
	if err := stmt.Verify(); err != nil {
		violations = append(violations, err.Error())
	}

	again, err := svc.GetStatement(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	if !sameStatement(stmt, again) {
		violations = append(violations, "repeated computation produced a different statement")
	}

	toggled := q
	toggled.IncludeZeroBalanceTransactions = !q.IncludeZeroBalanceTransactions
	other, err := svc.GetStatement(ctx, toggled)
	if err != nil {
		return nil, nil, err
	}
	if !other.OpeningBalance.Equal(stmt.OpeningBalance) {
		violations = append(violations, fmt.Sprintf("opening balance depends on zero filter: %s vs %s", stmt.OpeningBalance, other.OpeningBalance))
	}
	if !other.ClosingBalance.Equal(stmt.ClosingBalance) {
		violations = append(violations, fmt.Sprintf("closing balance depends on zero filter: %s vs %s", stmt.ClosingBalance, other.ClosingBalance))
	}
	return stmt, violations, nil
}

func sameStatement(a, b *statement.Statement) bool {
	if !a.OpeningBalance.Equal(b.OpeningBalance) || !a.ClosingBalance.Equal(b.ClosingBalance) {
		return false
	}
	if len(a.Transactions) != len(b.Transactions) {
		return false
	}
	for i := range a.Transactions {
		x, y := a.Transactions[i], b.Transactions[i]
		if x.Kind != y.Kind || x.SourceID != y.SourceID || !x.Balance.Equal(y.Balance) {
			return false
		}
	}
	return true
}

func writeOutputs(dir string, stmt *statement.Statement) error {
	data, err := json.MarshalIndent(stmt, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "statement.json"), data, 0o644); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "statement.csv"))
	if err != nil {
		return err
	}
	if err := statementinterfaces.WriteStatementCSV(f, stmt); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt64Default(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
