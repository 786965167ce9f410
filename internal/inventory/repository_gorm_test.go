package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smart-inventory/smart-inventory/internal/platform/db"
	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
	"github.com/smart-inventory/smart-inventory/internal/suppliers"
)

type gormFixture struct {
	db        *gorm.DB
	products  *GormRepository
	suppliers suppliers.Repository
}

func newGormFixture(t *testing.T) gormFixture {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))
	return gormFixture{db: gdb, products: NewGormRepository(gdb), suppliers: suppliers.NewGormRepository(gdb)}
}

func (f gormFixture) supplier(t *testing.T, name, email string) suppliers.Supplier {
	t.Helper()
	s, err := f.suppliers.Create(context.Background(), suppliers.Supplier{Name: name, Email: email})
	require.NoError(t, err)
	return s
}

func (f gormFixture) product(t *testing.T, name string, stock, minStock int, price string, sup *suppliers.Supplier) Product {
	t.Helper()
	p, err := f.products.Save(context.Background(), Product{
		Name:     name,
		Stock:    stock,
		MinStock: minStock,
		Price:    decimal.RequireFromString(price),
		Supplier: sup,
	})
	require.NoError(t, err)
	return p
}

func TestGormSaveAndFind(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	acme := f.supplier(t, "Acme", "orders@acme.test")

	p := f.product(t, "Widget", 10, 5, "2.50", &acme)
	require.Equal(t, int64(1), p.ID)
	require.NotNil(t, p.Supplier)
	require.Equal(t, "orders@acme.test", p.Supplier.Email)
	require.True(t, p.Price.Equal(decimal.RequireFromString("2.5")))
	require.False(t, p.CreatedAt.IsZero())

	p.Stock = -3
	p.Supplier = nil
	saved, err := f.products.Save(ctx, p)
	require.NoError(t, err)
	require.Equal(t, -3, saved.Stock)
	require.Nil(t, saved.Supplier)

	_, err = f.products.Save(ctx, Product{ID: 77, Name: "ghost"})
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.products.FindByID(ctx, 77)
	require.ErrorIs(t, err, ErrProductNotFound)

	ok, err := f.products.ExistsByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGormFindAppliesQuery(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	f.product(t, "Blue Pen", 5, 5, "1.50", nil)
	f.product(t, "Red Pen", 2, 5, "1.20", nil)
	f.product(t, "Notebook", 9, 5, "3.00", nil)
	f.product(t, "Pencil 100%", 5, 1, "0.40", nil)

	for _, params := range []ListParams{
		{},
		{StockLevel: "low", SortField: "id"},
		{StockLevel: "healthy", SortField: "name", SortDirection: "desc"},
		{Search: "PEN", SortField: "price"},
		{Search: "100%"},
		{Search: "_"},
	} {
		q, err := BuildQuery(params)
		require.NoError(t, err)
		got, err := f.products.Find(ctx, q)
		require.NoError(t, err)
		require.Equal(t, ids(q.Apply(sample())), ids(got), "%+v", params)
	}

	found, err := f.products.FindByNameContaining(ctx, "pen")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 4}, ids(found))
}

func TestGormNameSearchFoldsNonASCII(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	f.product(t, "Äpfel Saft", 3, 1, "1.00", nil)
	f.product(t, "Crème brûlée", 3, 1, "4.00", nil)
	f.product(t, "Apfel", 3, 1, "1.00", nil)

	for _, text := range []string{"äpfel", "Äpfel", "ÄPFEL", "CRÈME", "brûl"} {
		q, err := BuildQuery(ListParams{Search: text})
		require.NoError(t, err)
		all, err := f.products.FindAll(ctx)
		require.NoError(t, err)
		want := ids(q.Apply(all))
		require.Len(t, want, 1, text)

		got, err := f.products.Find(ctx, q)
		require.NoError(t, err)
		require.Equal(t, want, ids(got), text)

		found, err := f.products.FindByNameContaining(ctx, text)
		require.NoError(t, err)
		require.Equal(t, want, ids(found), text)
	}
}

func TestGormUnlinkSuppliers(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	acme := f.supplier(t, "Acme", "a@acme.test")
	other := f.supplier(t, "Other", "o@other.test")
	a := f.product(t, "A", 1, 0, "1", &acme)
	b := f.product(t, "B", 1, 0, "1", &acme)
	c := f.product(t, "C", 1, 0, "1", &other)

	n, err := f.products.UnlinkSupplier(ctx, acme.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	for _, id := range []int64{a.ID, b.ID} {
		p, err := f.products.FindByID(ctx, id)
		require.NoError(t, err)
		require.Nil(t, p.Supplier)
	}
	require.NoError(t, f.suppliers.Delete(ctx, acme.ID))

	got, err := f.products.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, got.Supplier.ID)

	n, err = f.products.UnlinkAllSuppliers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, f.suppliers.DeleteAll(ctx))
}

func TestGormDeletingLinkedSupplierIsConflict(t *testing.T) {
	f := newGormFixture(t)
	acme := f.supplier(t, "Acme", "")
	f.product(t, "A", 1, 0, "1", &acme)

	err := f.suppliers.Delete(context.Background(), acme.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestGormSaveWithDanglingSupplierIsConflict(t *testing.T) {
	f := newGormFixture(t)
	_, err := f.products.Save(context.Background(), Product{Name: "A", Supplier: &suppliers.Supplier{ID: 404}})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestGormDeleteAndStats(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", 4, 5, "2.50", nil)
	f.product(t, "B", 10, 5, "0.10", nil)

	st, err := f.products.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), st.TotalProducts)
	require.Equal(t, int64(14), st.TotalStock)
	require.Equal(t, int64(1), st.LowStockCount)
	require.True(t, st.InventoryValue.Equal(decimal.RequireFromString("11")), st.InventoryValue.String())

	require.NoError(t, f.products.DeleteByID(ctx, p.ID))
	require.ErrorIs(t, f.products.DeleteByID(ctx, p.ID), ErrProductNotFound)

	require.NoError(t, f.products.DeleteAll(ctx))
	all, err := f.products.FindAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
