package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	auditRepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/sheet"
	"github.com/mrlokans/librarian/internal/sheet/providers/gsheets"
	"github.com/mrlokans/librarian/internal/sheet/providers/sqlite"
)

// App is the wired set of components one command works with.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *database.Database // nil unless the sqlite backend or the audit trail needs it
	Store   sheet.Store
	Catalog *catalog.Manager
	Audit   *audit.Service // nil when auditing is disabled
}

// Open connects to the store and the local database and builds the catalog.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{Config: cfg, Logger: logger}

	if cfg.Store.Backend == config.StoreBackendSQLite || cfg.Audit.Enabled {
		db, err := database.NewDatabase(cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
		app.DB = db
	}

	store, err := OpenStore(ctx, cfg, app.DB, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	opts := []catalog.Option{
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithTables(cfg.Library.AvailableTable, cfg.Library.LoanedTable),
		catalog.WithLoanPeriod(cfg.Library.LoanPeriod),
		catalog.WithDueWindow(cfg.Library.DueWindow),
		catalog.WithCapacity(cfg.Library.Capacity),
	}
	if cfg.Audit.Enabled {
		app.Audit = audit.NewService(auditRepo.NewRepository(app.DB.DB), logger.Named("audit"))
		opts = append(opts, catalog.WithAuditor(app.Audit))
	}
	app.Catalog = catalog.New(store, opts...)

	return app, nil
}

// OpenStore builds the configured store backend.
func OpenStore(ctx context.Context, cfg *config.Config, db *database.Database, logger *zap.Logger) (sheet.Store, error) {
	tables := []string{cfg.Library.AvailableTable, cfg.Library.LoanedTable}

	switch cfg.Store.Backend {
	case config.StoreBackendSheets:
		return gsheets.New(ctx, gsheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			Tables:          tables,
		}, logger.Named("gsheets"))
	case config.StoreBackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("%w: sqlite backend needs a database", sheet.ErrStoreUnavailable)
		}
		return sqlite.New(db.DB), nil
	case config.StoreBackendMemory:
		return sheet.NewMemoryStore(tables...), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// Close flushes pending audit writes and closes the database.
func (a *App) Close() error {
	if a.Audit != nil {
		a.Audit.Wait()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
