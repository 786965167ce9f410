package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/smart-inventory/smart-inventory/internal/inventory"
	"github.com/smart-inventory/smart-inventory/internal/mailer"
	"github.com/smart-inventory/smart-inventory/internal/observability"
	"github.com/smart-inventory/smart-inventory/internal/platform/cache"
	"github.com/smart-inventory/smart-inventory/internal/platform/db"
	"github.com/smart-inventory/smart-inventory/internal/reports"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

// Stores holds the repositories of one storage backend.
type Stores struct {
	Products  inventory.Repository
	Suppliers suppliers.Repository
	// Health pings the backend.
	Health func(context.Context) error
	Close  func()
}

// OpenStores connects the backend selected by cfg.StoreDriver and applies
// its schema.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger) (Stores, error) {
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return Stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return Stores{}, fmt.Errorf("migrate postgres: %w", err)
		}
		return Stores{
			Products:  inventory.NewRepository(pool),
			Suppliers: suppliers.NewRepository(pool),
			Health:    pool.Ping,
			Close:     pool.Close,
		}, nil
	case StoreDriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return Stores{}, fmt.Errorf("open sqlite: %w", err)
		}
		if err := inventory.AutoMigrate(gdb); err != nil {
			closeGorm(gdb, logger)
			return Stores{}, fmt.Errorf("migrate sqlite: %w", err)
		}
		return GormStores(gdb, logger), nil
	default:
		return Stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// GormStores wraps an already migrated gorm database.
func GormStores(gdb *gorm.DB, logger *slog.Logger) Stores {
	return Stores{
		Products:  inventory.NewGormRepository(gdb),
		Suppliers: suppliers.NewGormRepository(gdb),
		Health: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func() { closeGorm(gdb, logger) },
	}
}

func closeGorm(gdb *gorm.DB, logger *slog.Logger) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil && logger != nil {
		logger.Warn("sqlite close", slog.Any("error", err))
	}
}

// Dependencies groups everything the HTTP application is built from.
type Dependencies struct {
	Logger  *slog.Logger
	Config  *Config
	Stores  Stores
	Cache   *cache.Versioned
	Mail    mailer.Transport
	Metrics *observability.Metrics
}

// NewHandler builds services, handlers and the router.
func NewHandler(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var testRecipient string
	if deps.Config != nil {
		testRecipient = deps.Config.MailTestRecipient
	}
	mailService := mailer.NewService(deps.Mail, logger, testRecipient)

	supplierService := suppliers.NewService(deps.Stores.Suppliers, deps.Stores.Products, deps.Cache, logger)
	inventoryService := inventory.NewService(deps.Stores.Products, supplierService, mailService, inventory.ServiceConfig{
		Logger:  logger,
		Cache:   deps.Cache,
		Metrics: deps.Metrics,
	})
	reportService := reports.NewService(inventoryService, supplierService, deps.Cache)

	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           deps.Config,
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		SupplierHandler:  suppliers.NewHandler(logger, supplierService),
		MailHandler:      mailer.NewHandler(logger, mailService),
		ReportsHandler:   reports.NewHandler(logger, reportService),
		Metrics:          deps.Metrics,
		Health:           deps.Stores.Health,
	})
}
