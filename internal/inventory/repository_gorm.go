package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

type productRecord struct {
	ID         int64               `gorm:"primaryKey;autoIncrement"`
	Name       string              `gorm:"not null;default:''"`
	Stock      int                 `gorm:"not null;default:0"`
	MinStock   int                 `gorm:"not null;default:0"`
	Price      decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"`
	SupplierID *int64              `gorm:"index"`
	Supplier   *suppliers.Supplier `gorm:"foreignKey:SupplierID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (productRecord) TableName() string {
	return "products"
}

func (r productRecord) toProduct() Product {
	return Product{
		ID:        r.ID,
		Name:      r.Name,
		Stock:     r.Stock,
		MinStock:  r.MinStock,
		Price:     r.Price,
		Supplier:  r.Supplier,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// GormRepository persists products through gorm, used with SQLite.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs GormRepository.
func NewGormRepository(gdb *gorm.DB) *GormRepository {
	return &GormRepository{db: gdb}
}

// AutoMigrate creates the suppliers and products tables.
func AutoMigrate(gdb *gorm.DB) error {
	if err := suppliers.AutoMigrate(gdb); err != nil {
		return err
	}
	return gdb.AutoMigrate(&productRecord{})
}

func (r *GormRepository) products(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&productRecord{}).Preload("Supplier")
}

func collect(records []productRecord) []Product {
	out := make([]Product, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toProduct())
	}
	return out
}

func (r *GormRepository) FindByID(ctx context.Context, id int64) (Product, error) {
	var rec productRecord
	err := r.products(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("inventory: get product %d: %w", id, err)
	}
	return rec.toProduct(), nil
}

func (r *GormRepository) FindAll(ctx context.Context) ([]Product, error) {
	var recs []productRecord
	if err := r.products(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("inventory: list products: %w", err)
	}
	return collect(recs), nil
}

func (r *GormRepository) Find(ctx context.Context, q Query) ([]Product, error) {
	var recs []productRecord
	if err := r.products(ctx).Scopes(q.Scopes()...).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("inventory: query products: %w", err)
	}
	return collect(recs), nil
}

func (r *GormRepository) FindByNameContaining(ctx context.Context, text string) ([]Product, error) {
	return r.Find(ctx, Query{Filters: []Filter{NameContains{Text: text}}, Sort: Sort{Column: "id", Direction: SortAsc}})
}

func (r *GormRepository) Save(ctx context.Context, p Product) (Product, error) {
	tx := r.db.WithContext(ctx)
	if p.ID == 0 {
		rec := productRecord{
			Name:       p.Name,
			Stock:      p.Stock,
			MinStock:   p.MinStock,
			Price:      p.Price,
			SupplierID: p.SupplierID(),
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return Product{}, mapWriteError("save product", err)
		}
		return r.FindByID(ctx, rec.ID)
	}

	res := tx.Model(&productRecord{ID: p.ID}).Updates(map[string]any{
		"name":        p.Name,
		"stock":       p.Stock,
		"min_stock":   p.MinStock,
		"price":       p.Price,
		"supplier_id": p.SupplierID(),
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return Product{}, mapWriteError("save product", res.Error)
	}
	if res.RowsAffected == 0 {
		return Product{}, ErrProductNotFound
	}
	return r.FindByID(ctx, p.ID)
}

func (r *GormRepository) DeleteByID(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&productRecord{}, id)
	if res.Error != nil {
		return mapWriteError(fmt.Sprintf("delete product %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&productRecord{}).Error
	if err != nil {
		return mapWriteError("delete all products", err)
	}
	return nil
}

func (r *GormRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("inventory: exists %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *GormRepository) UnlinkSupplier(ctx context.Context, supplierID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&productRecord{}).
		Where("supplier_id = ?", supplierID).
		Update("supplier_id", nil)
	if res.Error != nil {
		return 0, fmt.Errorf("inventory: unlink supplier %d: %w", supplierID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) UnlinkAllSuppliers(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&productRecord{}).
		Where("supplier_id IS NOT NULL").
		Update("supplier_id", nil)
	if res.Error != nil {
		return 0, fmt.Errorf("inventory: unlink all suppliers: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Stats sums in Go so the inventory value keeps decimal precision on SQLite.
func (r *GormRepository) Stats(ctx context.Context) (Stats, error) {
	var recs []productRecord
	if err := r.db.WithContext(ctx).Select("stock", "min_stock", "price").Find(&recs).Error; err != nil {
		return Stats{}, fmt.Errorf("inventory: stats: %w", err)
	}
	st := Stats{InventoryValue: decimal.Zero}
	for _, rec := range recs {
		st.TotalProducts++
		st.TotalStock += int64(rec.Stock)
		if rec.Stock < rec.MinStock {
			st.LowStockCount++
		}
		st.InventoryValue = st.InventoryValue.Add(rec.Price.Mul(decimal.NewFromInt(int64(rec.Stock))))
	}
	return st, nil
}
