package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smart-inventory/smart-inventory/internal/platform/db"
	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

// Repository persists products.
type Repository interface {
	FindByID(ctx context.Context, id int64) (Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	Find(ctx context.Context, q Query) ([]Product, error)
	FindByNameContaining(ctx context.Context, text string) ([]Product, error)
	// Save inserts when ID is zero, otherwise replaces the stored row.
	Save(ctx context.Context, p Product) (Product, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	UnlinkSupplier(ctx context.Context, supplierID int64) (int64, error)
	UnlinkAllSuppliers(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}

// PostgresRepository persists products in PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PostgresRepository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectProducts = `SELECT p.id, p.name, p.stock, p.min_stock, p.price::text, p.supplier_id,
       s.name, s.mobile, s.email, s.company, p.created_at, p.updated_at
FROM products p
LEFT JOIN suppliers s ON s.id = p.supplier_id`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p          Product
		price      string
		supplierID *int64
		name       *string
		mobile     *string
		email      *string
		company    *string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Stock, &p.MinStock, &price, &supplierID,
		&name, &mobile, &email, &company, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("inventory: parse price %q: %w", price, err)
	}
	p.Price = d
	if supplierID != nil {
		p.Supplier = &suppliers.Supplier{
			ID:      *supplierID,
			Name:    deref(name),
			Mobile:  deref(mobile),
			Email:   deref(email),
			Company: deref(company),
		}
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PostgresRepository) query(ctx context.Context, sql string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("inventory: query products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProducts+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("inventory: get product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]Product, error) {
	return r.query(ctx, selectProducts+` ORDER BY p.id`)
}

func (r *PostgresRepository) Find(ctx context.Context, q Query) ([]Product, error) {
	where, orderBy, args := q.SQL()
	return r.query(ctx, selectProducts+where+orderBy, args...)
}

func (r *PostgresRepository) FindByNameContaining(ctx context.Context, text string) ([]Product, error) {
	return r.Find(ctx, Query{Filters: []Filter{NameContains{Text: text}}, Sort: Sort{Column: "id", Direction: SortAsc}})
}

func (r *PostgresRepository) Save(ctx context.Context, p Product) (Product, error) {
	var saved Product
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		id := p.ID
		var err error
		if id == 0 {
			const insert = `INSERT INTO products (name, stock, min_stock, price, supplier_id)
VALUES ($1, $2, $3, $4::numeric, $5) RETURNING id`
			err = tx.QueryRow(ctx, insert, p.Name, p.Stock, p.MinStock, p.Price.String(), p.SupplierID()).Scan(&id)
		} else {
			const update = `UPDATE products
SET name = $1, stock = $2, min_stock = $3, price = $4::numeric, supplier_id = $5, updated_at = $6
WHERE id = $7 RETURNING id`
			err = tx.QueryRow(ctx, update, p.Name, p.Stock, p.MinStock, p.Price.String(), p.SupplierID(), time.Now().UTC(), id).Scan(&id)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return mapWriteError("save product", err)
		}
		// read back inside the tx so the joined supplier matches the write
		saved, err = scanProduct(tx.QueryRow(ctx, selectProducts+` WHERE p.id = $1`, id))
		if err != nil {
			return fmt.Errorf("inventory: reload product %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return saved, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(fmt.Sprintf("delete product %d", id), err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM products`); err != nil {
		return mapWriteError("delete all products", err)
	}
	return nil
}

func (r *PostgresRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("inventory: exists %d: %w", id, err)
	}
	return ok, nil
}

func (r *PostgresRepository) UnlinkSupplier(ctx context.Context, supplierID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET supplier_id = NULL, updated_at = now() WHERE supplier_id = $1`, supplierID)
	if err != nil {
		return 0, fmt.Errorf("inventory: unlink supplier %d: %w", supplierID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) UnlinkAllSuppliers(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET supplier_id = NULL, updated_at = now() WHERE supplier_id IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("inventory: unlink all suppliers: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	const query = `SELECT COUNT(*),
       COALESCE(SUM(stock), 0),
       COUNT(*) FILTER (WHERE stock < min_stock),
       COALESCE(SUM(price * stock), 0)::text
FROM products`
	var (
		st    Stats
		value string
	)
	if err := r.pool.QueryRow(ctx, query).Scan(&st.TotalProducts, &st.TotalStock, &st.LowStockCount, &value); err != nil {
		return Stats{}, fmt.Errorf("inventory: stats: %w", err)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Stats{}, fmt.Errorf("inventory: parse inventory value %q: %w", value, err)
	}
	st.InventoryValue = d
	return st, nil
}

// a concurrent supplier delete can leave the reference dangling
func mapWriteError(op string, err error) error {
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("inventory: %s: %w", op, httpx.ErrConflict)
	}
	return fmt.Errorf("inventory: %s: %w", op, err)
}
