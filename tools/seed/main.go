package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	statement "ledger-cloud/internal/statement/domain"
)

type config struct {
	dsn              string
	tenantID         int64
	customers        int
	startDate        string
	months           int
	invoicesPerMonth int
	payRatio         float64
	zeroEvery        int
	seed             int64
	applyMigrations  bool
	migrationsDir    string
}

type seedStats struct {
	customers int
	invoices  int
	receipts  int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}
	start, err := statement.ParseDate(cfg.startDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start-date:", err)
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
		logger.Error("open db", zap.Error(err))
		return 1
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.applyMigrations {
		if err := applyMigrations(ctx, db, cfg.migrationsDir); err != nil {
			logger.Error("apply migrations", zap.Error(err))
			return 1
		}
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	stats, err := seed(ctx, db, cfg, start, rng)
	if err != nil {
		logger.Error("seed ledger", zap.Error(err))
		return 1
	}
	logger.Info("seed done",
		zap.Int64("tenant_id", cfg.tenantID),
		zap.Int("customers", stats.customers),
		zap.Int("invoices", stats.invoices),
		zap.Int("receipts", stats.receipts),
	)
	return 0
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.StringVar(&cfg.dsn, "pg-dsn", getenvDefault("PG_DSN", getenvDefault("DATABASE_URL", "")), "Postgres DSN")
	fs.Int64Var(&cfg.tenantID, "tenant-id", getenvInt64Default("TENANT_ID", 1), "tenant id")
	fs.IntVar(&cfg.customers, "customers", 10, "number of customers")
	fs.StringVar(&cfg.startDate, "start-date", "2024-01-01", "first issue month (YYYY-MM-DD)")
	fs.IntVar(&cfg.months, "months", 12, "number of months to seed")
	fs.IntVar(&cfg.invoicesPerMonth, "invoices-per-month", 3, "invoices per customer per month")
	fs.Float64Var(&cfg.payRatio, "pay-ratio", 0.7, "share of invoices that receive a payment")
	fs.IntVar(&cfg.zeroEvery, "zero-every", 10, "every Nth invoice has a zero total (0 disables)")
	fs.Int64Var(&cfg.seed, "seed", 20240101, "random seed")
	fs.BoolVar(&cfg.applyMigrations, "apply-migrations", false, "apply migrations before seeding")
	fs.StringVar(&cfg.migrationsDir, "migrations-dir", "migrations", "directory containing *.sql migrations")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.dsn == "" {
		return cfg, errors.New("missing -pg-dsn or PG_DSN/DATABASE_URL")
	}
	if cfg.tenantID <= 0 {
		return cfg, errors.New("-tenant-id must be > 0")
	}
	if cfg.customers <= 0 || cfg.months <= 0 || cfg.invoicesPerMonth <= 0 {
		return cfg, errors.New("-customers, -months and -invoices-per-month must be > 0")
	}
	if cfg.payRatio < 0 || cfg.payRatio > 1 {
		return cfg, errors.New("-pay-ratio must be within [0, 1]")
	}
	return cfg, nil
}

func seed(ctx context.Context, db *sql.DB, cfg config, start time.Time, rng *rand.Rand) (seedStats, error) {
	var stats seedStats
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	monthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	invoiceSeq := 0
	for c := 0; c < cfg.customers; c++ {
		var customerID int64
		err = tx.QueryRowContext(ctx, `
INSERT INTO customers (tenant_id, name, email, tax_id)
VALUES ($1, $2, $3, $4) RETURNING id`,
			cfg.tenantID,
			fmt.Sprintf("Customer %03d", c+1),
			fmt.Sprintf("customer%03d@example.com", c+1),
			fmt.Sprintf("TAX-%06d", rng.Intn(1_000_000)),
		).Scan(&customerID)
		if err != nil {
			return stats, fmt.Errorf("insert customer: %w", err)
		}
		stats.customers++

		for m := 0; m < cfg.months; m++ {
			month := monthStart.AddDate(0, m, 0)
			days := daysIn(month)
			for i := 0; i < cfg.invoicesPerMonth; i++ {
				invoiceSeq++
				issued := month.AddDate(0, 0, rng.Intn(days))
				total := decimal.New(int64(rng.Intn(500_000)+1_000), -2)
				if cfg.zeroEvery > 0 && invoiceSeq%cfg.zeroEvery == 0 {
					total = decimal.Zero
				}
				number := "INV-" + strconv.Itoa(invoiceSeq)
				var invoiceID int64
				err = tx.QueryRowContext(ctx, `
INSERT INTO invoices (tenant_id, customer_id, number, issue_date, total, status)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
					cfg.tenantID, customerID, number, issued, total, string(statement.InvoiceStatusSent),
				).Scan(&invoiceID)
				if err != nil {
					return stats, fmt.Errorf("insert invoice: %w", err)
				}
				stats.invoices++

				if rng.Float64() >= cfg.payRatio {
					continue
				}
				paid := issued.AddDate(0, 0, rng.Intn(45))
				amount := total
				if rng.Intn(4) == 0 && total.IsPositive() {
					amount = total.Div(decimal.NewFromInt(2)).Round(2)
				}
				_, err = tx.ExecContext(ctx, `
INSERT INTO receipts (tenant_id, invoice_id, number, payment_date, amount, payment_method)
VALUES ($1, $2, $3, $4, $5, $6)`,
					cfg.tenantID, invoiceID, "RCP-"+strconv.Itoa(invoiceSeq), paid, amount, paymentMethod(rng),
				)
				if err != nil {
					return stats, fmt.Errorf("insert receipt: %w", err)
				}
				stats.receipts++
			}
		}
	}
	err = tx.Commit()
	return stats, err
}

func applyMigrations(ctx context.Context, db *sql.DB, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %s", dir)
	}
	sort.Strings(files)
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func paymentMethod(rng *rand.Rand) string {
	methods := []string{"bank_transfer", "credit_card", "cash", "check"}
	return methods[rng.Intn(len(methods))]
}

func daysIn(month time.Time) int {
	return month.AddDate(0, 1, -1).Day()
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
