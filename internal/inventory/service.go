package inventory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/smart-inventory/smart-inventory/internal/observability"
	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

// SupplierLookup resolves supplier references.
type SupplierLookup interface {
	Get(ctx context.Context, id int64) (suppliers.Supplier, error)
}

// Notifier mails a supplier about low stock. It reports delivery and never fails the caller.
type Notifier interface {
	SendLowStockEmail(ctx context.Context, productName, supplierEmail string, currentStock int) bool
}

// Invalidator drops cached read models after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Recorder receives domain metrics.
type Recorder interface {
	StockMovement(kind string, qty int)
	LowStockNotification(result string)
}

// ServiceConfig groups optional collaborators.
type ServiceConfig struct {
	Logger  *slog.Logger
	Cache   Invalidator
	Metrics Recorder
}

// Service coordinates product operations.
type Service struct {
	repo      Repository
	suppliers SupplierLookup
	notifier  Notifier
	cache     Invalidator
	metrics   Recorder
	logger    *slog.Logger
}

// NewService builds Service.
func NewService(repo Repository, lookup SupplierLookup, notifier Notifier, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		suppliers: lookup,
		notifier:  notifier,
		cache:     cfg.Cache,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Sell subtracts qty from the stock and persists it. When the new stock is
// below the minimum the supplier is mailed; a failed or skipped mail is
// reported in the result and never undoes the sale.
func (s *Service) Sell(ctx context.Context, id int64, qty int) (SaleResult, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return SaleResult{}, err
	}
	p.Stock -= qty
	if err := checkStock(p.Stock); err != nil {
		return SaleResult{}, err
	}
	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return SaleResult{}, err
	}
	s.invalidate(ctx)
	s.recordMovement("sell", qty)
	s.logger.Info("product sold",
		slog.Int64("product_id", saved.ID),
		slog.Int("quantity", qty),
		slog.Int("stock", saved.Stock))

	res := SaleResult{Product: saved}
	if saved.BelowMinimum() {
		res.LowStock = true
		res.Notified = s.notifyLowStock(ctx, saved)
	}
	return res, nil
}

func (s *Service) notifyLowStock(ctx context.Context, p Product) bool {
	if p.Supplier == nil || strings.TrimSpace(p.Supplier.Email) == "" {
		s.logger.Warn("low stock without supplier email, notification skipped",
			slog.Int64("product_id", p.ID),
			slog.Int("stock", p.Stock),
			slog.Int("min_stock", p.MinStock))
		s.recordNotification(observability.NotificationSkipped)
		return false
	}
	if s.notifier == nil {
		s.recordNotification(observability.NotificationSkipped)
		return false
	}
	sent := s.notifier.SendLowStockEmail(ctx, p.Name, p.Supplier.Email, p.Stock)
	if sent {
		s.recordNotification(observability.NotificationSent)
	} else {
		s.logger.Warn("low stock notification failed",
			slog.Int64("product_id", p.ID),
			slog.Int64("supplier_id", p.Supplier.ID))
		s.recordNotification(observability.NotificationFailed)
	}
	return sent
}

// Restock adds qty to the stock. Any integer is accepted.
func (s *Service) Restock(ctx context.Context, id int64, qty int) (Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.Stock += qty
	if err := checkStock(p.Stock); err != nil {
		return Product{}, err
	}
	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	s.recordMovement("restock", qty)
	return saved, nil
}

// LowStock lists products with stock strictly below the minimum.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.filterAll(ctx, Product.BelowMinimum)
}

// HealthyStock lists products with stock at or above the minimum.
func (s *Service) HealthyStock(ctx context.Context) ([]Product, error) {
	return s.filterAll(ctx, func(p Product) bool { return !p.BelowMinimum() })
}

func (s *Service) filterAll(ctx context.Context, keep func(Product) bool) ([]Product, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Create stores a new product referencing supplierID, which must exist.
func (s *Service) Create(ctx context.Context, p Product, supplierID int64) (Product, error) {
	if supplierID <= 0 {
		return Product{}, ErrMissingSupplier
	}
	if err := checkStock(p.Stock, p.MinStock); err != nil {
		return Product{}, err
	}
	sup, err := s.lookupSupplier(ctx, supplierID)
	if err != nil {
		return Product{}, err
	}
	p.ID = 0
	p.Supplier = &sup
	created, err := s.repo.Save(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// UpdateFull replaces name, stock, minStock and supplier of a product.
func (s *Service) UpdateFull(ctx context.Context, id int64, upd ProductUpdate) (Product, error) {
	if err := checkStock(upd.Stock, upd.MinStock); err != nil {
		return Product{}, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	var sup *suppliers.Supplier
	if upd.SupplierID != nil && *upd.SupplierID != 0 {
		found, err := s.lookupSupplier(ctx, *upd.SupplierID)
		if err != nil {
			return Product{}, err
		}
		sup = &found
	}
	p.Name = upd.Name
	p.Stock = upd.Stock
	p.MinStock = upd.MinStock
	p.Supplier = sup
	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return saved, nil
}

func (s *Service) lookupSupplier(ctx context.Context, id int64) (suppliers.Supplier, error) {
	sup, err := s.suppliers.Get(ctx, id)
	if errors.Is(err, httpx.ErrNotFound) {
		return suppliers.Supplier{}, ErrSupplierNotFound
	}
	if err != nil {
		return suppliers.Supplier{}, err
	}
	return sup, nil
}

// Get returns the product or ErrProductNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns the products matching q.
func (s *Service) List(ctx context.Context, q Query) ([]Product, error) {
	return s.repo.Find(ctx, q)
}

// SearchByName returns products whose name contains text, ignoring case.
func (s *Service) SearchByName(ctx context.Context, text string) ([]Product, error) {
	return s.repo.FindByNameContaining(ctx, text)
}

// Sorted returns every product ordered ascending by sortBy (default stock).
func (s *Service) Sorted(ctx context.Context, sortBy string) ([]Product, error) {
	order, err := ParseSort(sortBy, string(SortAsc))
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, Query{Sort: order})
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteAll removes every product.
func (s *Service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Stats aggregates the product table.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", slog.Any("error", err))
	}
}

func (s *Service) recordMovement(kind string, qty int) {
	if s.metrics != nil {
		s.metrics.StockMovement(kind, qty)
	}
}

func (s *Service) recordNotification(result string) {
	if s.metrics != nil {
		s.metrics.LowStockNotification(result)
	}
}
