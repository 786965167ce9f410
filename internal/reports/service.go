// Package reports serves aggregated inventory figures from a versioned cache.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/smart-inventory/smart-inventory/internal/inventory"
)

// ProductStats aggregates the product table.
type ProductStats interface {
	Stats(ctx context.Context) (inventory.Stats, error)
}

// SupplierCounter counts suppliers.
type SupplierCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Cache loads JSON payloads through a read-through cache. *cache.Versioned
// implements it; nil disables caching.
type Cache interface {
	FetchJSON(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error
}

// Summary is the inventory dashboard payload.
type Summary struct {
	TotalProducts  int64           `json:"totalProducts"`
	TotalSuppliers int64           `json:"totalSuppliers"`
	TotalStock     int64           `json:"totalStock"`
	LowStockCount  int64           `json:"lowStockCount"`
	InventoryValue decimal.Decimal `json:"inventoryValue"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}

// Service builds reports.
type Service struct {
	products  ProductStats
	suppliers SupplierCounter
	cache     Cache
	now       func() time.Time
}

// NewService wires the report sources with a cache.
func NewService(products ProductStats, suppliers SupplierCounter, cache Cache) *Service {
	return &Service{products: products, suppliers: suppliers, cache: cache, now: time.Now}
}

// Summary returns the current inventory summary, cached until the next write.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if s.cache == nil {
		return s.loadSummary(ctx)
	}
	var out Summary
	err := s.cache.FetchJSON(ctx, &out, func(ctx context.Context) (any, error) {
		return s.loadSummary(ctx)
	}, "reports", "summary")
	return out, err
}

func (s *Service) loadSummary(ctx context.Context) (Summary, error) {
	var (
		stats     inventory.Stats
		suppliers int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.products.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = s.suppliers.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Summary{
		TotalProducts:  stats.TotalProducts,
		TotalSuppliers: suppliers,
		TotalStock:     stats.TotalStock,
		LowStockCount:  stats.LowStockCount,
		InventoryValue: stats.InventoryValue,
		GeneratedAt:    s.now().UTC(),
	}, nil
}
