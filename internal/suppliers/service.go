package suppliers

import (
	"context"
	"fmt"
	"log/slog"
)

// ProductUnlinker clears product references to suppliers.
type ProductUnlinker interface {
	UnlinkSupplier(ctx context.Context, supplierID int64) (int64, error)
	UnlinkAllSuppliers(ctx context.Context) (int64, error)
}

// Invalidator drops cached read models after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates supplier operations.
type Service struct {
	repo     Repository
	products ProductUnlinker
	cache    Invalidator
	logger   *slog.Logger
}

// NewService builds Service. cache may be nil.
func NewService(repo Repository, products ProductUnlinker, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, products: products, cache: cache, logger: logger}
}

// Add stores supplier as given; fields are not validated.
func (s *Service) Add(ctx context.Context, supplier Supplier) (Supplier, error) {
	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return Supplier{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Get returns the supplier or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

// List returns every supplier ordered by id.
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

// Count returns the number of suppliers.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// UpdateFull replaces name, email, mobile and company of an existing supplier.
func (s *Service) UpdateFull(ctx context.Context, id int64, fields Supplier) (Supplier, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	existing.Name = fields.Name
	existing.Email = fields.Email
	existing.Mobile = fields.Mobile
	existing.Company = fields.Company
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return Supplier{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete unlinks every product of the supplier, then removes the supplier.
// The products survive with no supplier.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.products.UnlinkSupplier(ctx, id)
	if err != nil {
		return fmt.Errorf("suppliers: unlink products of %d: %w", id, err)
	}
	// bump now: the unlink is already visible even if the delete fails
	s.invalidate(ctx)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("supplier deleted", slog.Int64("supplier_id", id), slog.Int64("products_unlinked", n))
	return nil
}

// DeleteAll unlinks every product from its supplier, then clears the suppliers.
func (s *Service) DeleteAll(ctx context.Context) error {
	n, err := s.products.UnlinkAllSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("suppliers: unlink all products: %w", err)
	}
	s.invalidate(ctx)
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Info("all suppliers deleted", slog.Int64("products_unlinked", n))
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", slog.Any("error", err))
	}
}
