package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

// Product is a stocked item. Stock may go negative; nothing floors it.
type Product struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Stock     int                 `json:"stock"`
	MinStock  int                 `json:"minStock"`
	Price     decimal.Decimal     `json:"price"`
	Supplier  *suppliers.Supplier `json:"supplier"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// SupplierID returns the referenced supplier id, or nil when unlinked.
func (p Product) SupplierID() *int64 {
	if p.Supplier == nil {
		return nil
	}
	id := p.Supplier.ID
	return &id
}

// BelowMinimum reports stock < minStock, the condition that triggers a
// supplier notification and the low-stock endpoint.
func (p Product) BelowMinimum() bool {
	return p.Stock < p.MinStock
}

// ProductUpdate carries the fields replaced by a full update. Price is not
// part of the set.
type ProductUpdate struct {
	Name     string
	Stock    int
	MinStock int
	// SupplierID nil or 0 clears the supplier.
	SupplierID *int64
}

// SaleResult describes the outcome of a sale.
type SaleResult struct {
	Product  Product
	LowStock bool
	Notified bool
}

// Stats aggregates the product table.
type Stats struct {
	TotalProducts  int64
	TotalStock     int64
	LowStockCount  int64
	InventoryValue decimal.Decimal
}

var (
	// ErrProductNotFound indicates the product id does not exist.
	ErrProductNotFound = fmt.Errorf("product: %w", httpx.ErrNotFound)
	// ErrMissingSupplier is returned when a product is created without a supplier id.
	ErrMissingSupplier = fmt.Errorf("supplier information is missing: %w", httpx.ErrInvalidReference)
	// ErrSupplierNotFound is returned when the referenced supplier does not exist.
	ErrSupplierNotFound = fmt.Errorf("supplier not found: %w", httpx.ErrInvalidReference)
	// ErrInvalidSortField rejects sort fields outside the column whitelist.
	ErrInvalidSortField = fmt.Errorf("%w: unknown sort field", httpx.ErrValidation)
	// ErrStockOutOfRange rejects stock values the INTEGER columns cannot hold.
	ErrStockOutOfRange = fmt.Errorf("%w: stock out of range", httpx.ErrValidation)
)

// checkStock reports ErrStockOutOfRange unless every value fits in 32 bits.
func checkStock(values ...int) error {
	for _, v := range values {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return ErrStockOutOfRange
		}
	}
	return nil
}
