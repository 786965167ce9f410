package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smart-inventory/smart-inventory/internal/platform/db"
	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
)

// Repository persists suppliers.
type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, supplier Supplier) (Supplier, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const supplierColumns = `id, name, mobile, email, company`

func (r *repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("suppliers: list: %w", err)
	}
	defer rows.Close()

	out := make([]Supplier, 0)
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Mobile, &s.Email, &s.Company); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Mobile, &s.Email, &s.Company)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, ErrNotFound
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("suppliers: get %d: %w", id, err)
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	const query = `INSERT INTO suppliers (name, mobile, email, company) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRow(ctx, query, supplier.Name, supplier.Mobile, supplier.Email, supplier.Company).Scan(&supplier.ID)
	if err != nil {
		return Supplier{}, fmt.Errorf("suppliers: create: %w", err)
	}
	return supplier, nil
}

func (r *repository) Update(ctx context.Context, supplier Supplier) (Supplier, error) {
	const query = `UPDATE suppliers SET name = $1, mobile = $2, email = $3, company = $4 WHERE id = $5`
	tag, err := r.db.Exec(ctx, query, supplier.Name, supplier.Mobile, supplier.Email, supplier.Company, supplier.ID)
	if err != nil {
		return Supplier{}, fmt.Errorf("suppliers: update %d: %w", supplier.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return Supplier{}, ErrNotFound
	}
	return supplier, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(fmt.Sprintf("delete %d", id), err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM suppliers`); err != nil {
		return mapWriteError("delete all", err)
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("suppliers: count: %w", err)
	}
	return n, nil
}

// a supplier still referenced by products cannot be removed
func mapWriteError(op string, err error) error {
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("suppliers: %s: still referenced by products: %w", op, httpx.ErrConflict)
	}
	return fmt.Errorf("suppliers: %s: %w", op, err)
}
