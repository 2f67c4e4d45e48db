package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ledger-cloud/internal/audit"
	"ledger-cloud/internal/config"
	"ledger-cloud/internal/observability/metrics"
	statementapp "ledger-cloud/internal/statement/application"
	statementmemory "ledger-cloud/internal/statement/infrastructure/memory"
	statementrepo "ledger-cloud/internal/statement/infrastructure/postgres"
	statementinterfaces "ledger-cloud/internal/statement/interfaces"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	var db *sql.DB
	if cfg.Store == config.StorePostgres {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db open error", zap.Error(err))
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatal("db ping error", zap.Error(err))
		}
	}

	metrics.Init(db, logger)

	service, err := buildStatementService(cfg, db)
	if err != nil {
		logger.Fatal("statement service error", zap.Error(err))
	}

	var auditLogger audit.Logger
	if cfg.AuditEnabled {
		if repo := audit.NewRepository(db); repo != nil {
			auditLogger = repo
		} else {
			auditLogger = audit.NewZapLogger(logger.Named("audit"))
		}
	}

	statementHandler, err := statementinterfaces.NewStatementHandler(service, auditLogger,
		statementinterfaces.WithDefaultTenant(cfg.DefaultTenantID),
		statementinterfaces.WithSheetName(cfg.ExportSheetName),
		statementinterfaces.WithQueryTimeout(cfg.QueryTimeout),
		statementinterfaces.WithLogger(logger.Named("statement")),
	)
	if err != nil {
		logger.Fatal("statement handler error", zap.Error(err))
	}

	router := statementinterfaces.NewRouter(statementHandler, statementinterfaces.RouterOptions{
		Logger:         logger.Named("http"),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TenantHeader:   cfg.TenantHeader,
		Metrics:        promhttp.Handler(),
		Ready: func(r *http.Request) error {
			if db == nil {
				return nil
			}
			return db.PingContext(r.Context())
		},
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", zap.Error(err))
		}
	}()

	logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server error", zap.Error(err))
	}
	logger.Info("http stopped")
}

func buildStatementService(cfg config.Config, db *sql.DB) (*statementapp.StatementService, error) {
	if cfg.Store == config.StoreMemory {
		ledger := statementmemory.NewLedger()
		if cfg.MemoryFixture != "" {
			loaded, err := statementmemory.LoadFixtureFile(cfg.MemoryFixture)
			if err != nil {
				return nil, err
			}
			ledger = loaded
		}
		return statementapp.NewStatementService(ledger, ledger, ledger, statementapp.WithSnapshot(ledger))
	}
	store := statementrepo.NewStore(db)
	var opts []statementapp.Option
	if cfg.SnapshotReads {
		opts = append(opts, statementapp.WithSnapshot(store))
	}
	return statementapp.NewStatementService(store.Customers, store.Invoices, store.Receipts, opts...)
}
