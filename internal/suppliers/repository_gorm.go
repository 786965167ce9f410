package suppliers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository returns a Repository backed by gorm, used with SQLite.
func NewGormRepository(gdb *gorm.DB) Repository {
	return &gormRepository{db: gdb}
}

// AutoMigrate creates the suppliers table.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Supplier{})
}

func (r *gormRepository) List(ctx context.Context) ([]Supplier, error) {
	out := make([]Supplier, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("suppliers: list: %w", err)
	}
	return out, nil
}

func (r *gormRepository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Supplier{}, ErrNotFound
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("suppliers: get %d: %w", id, err)
	}
	return s, nil
}

func (r *gormRepository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier.ID = 0
	if err := r.db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return Supplier{}, fmt.Errorf("suppliers: create: %w", err)
	}
	return supplier, nil
}

func (r *gormRepository) Update(ctx context.Context, supplier Supplier) (Supplier, error) {
	res := r.db.WithContext(ctx).Model(&Supplier{ID: supplier.ID}).Updates(map[string]any{
		"name":    supplier.Name,
		"mobile":  supplier.Mobile,
		"email":   supplier.Email,
		"company": supplier.Company,
	})
	if res.Error != nil {
		return Supplier{}, fmt.Errorf("suppliers: update %d: %w", supplier.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return Supplier{}, ErrNotFound
	}
	return supplier, nil
}

func (r *gormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&Supplier{}, id)
	if res.Error != nil {
		return mapWriteError(fmt.Sprintf("delete %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) DeleteAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Supplier{}).Error
	if err != nil {
		return mapWriteError("delete all", err)
	}
	return nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Supplier{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("suppliers: count: %w", err)
	}
	return n, nil
}
