package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/medirent/opsdesk/internal/config"
	"github.com/medirent/opsdesk/internal/feed"
	"github.com/medirent/opsdesk/internal/platform/logger"
	"github.com/medirent/opsdesk/internal/platform/postgres"
)

// application holds the initialized components of the server. It is
// built once at startup and torn down by cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	aggregator *feed.Aggregator
	lifecycle  *feed.Lifecycle

	manualTasks *postgres.ManualTaskStore
	users       *postgres.UserStore
}

// newApplication wires all application components in dependency order.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, appLogger); err != nil {
		db.Close()
		return nil, err
	}

	// Stores over the shared connection pool.
	manualTasks := postgres.NewManualTaskStore(db)
	diagnostics := postgres.NewDiagnosticStore(db)
	rentals := postgres.NewRentalStore(db)
	payments := postgres.NewPaymentStore(db)
	appointments := postgres.NewAppointmentStore(db)
	bons := postgres.NewCNAMBonStore(db)
	sales := postgres.NewSaleStore(db)
	users := postgres.NewUserStore(db)

	// Each reader projects one domain into feed tasks. The wall clock is
	// injected so derivation rules stay testable.
	clock := feed.Clock(time.Now)
	readers := []feed.SourceReader{
		feed.NewManualReader(manualTasks, clock),
		feed.NewDiagnosticReader(diagnostics, clock),
		feed.NewRentalReader(rentals, cfg.Feed.RentalExpiryWarn(), clock),
		feed.NewPaymentReader(payments, cfg.Feed.PaymentGrace(), clock),
		feed.NewAppointmentReader(appointments, clock),
		feed.NewCNAMReader(bons, cfg.Feed.CNAMRenewalLead(), clock),
		feed.NewSaleReader(sales, clock),
	}

	aggregator := feed.NewAggregator(readers, cfg.Feed.ReaderTimeout(), appLogger)
	lifecycle := feed.NewLifecycle(
		manualTasks,
		diagnostics,
		rentals,
		payments,
		appointments,
		bons,
		sales,
		appLogger,
	)

	return &application{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		aggregator:  aggregator,
		lifecycle:   lifecycle,
		manualTasks: manualTasks,
		users:       users,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", slog.String("error", err.Error()))
		}
	}
}
