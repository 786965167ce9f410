package suppliers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu     sync.Mutex
	rows   map[int64]Supplier
	nextID int64
	calls  *[]string
}

func newMemoryRepo(calls *[]string) *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Supplier), calls: calls}
}

func (r *memoryRepo) record(call string) {
	if r.calls != nil {
		*r.calls = append(*r.calls, call)
	}
}

func (r *memoryRepo) List(ctx context.Context) ([]Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Supplier, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) Create(ctx context.Context, s Supplier) (Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.rows[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Update(ctx context.Context, s Supplier) (Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.ID]; !ok {
		return Supplier{}, ErrNotFound
	}
	r.rows[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("delete")
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("deleteAll")
	r.rows = make(map[int64]Supplier)
	return nil
}

func (r *memoryRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

// fakeProducts tracks which product ids reference which supplier.
type fakeProducts struct {
	links map[int64]*int64
	calls *[]string
	err   error
}

func (f *fakeProducts) UnlinkSupplier(ctx context.Context, supplierID int64) (int64, error) {
	*f.calls = append(*f.calls, "unlink")
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, sup := range f.links {
		if sup != nil && *sup == supplierID {
			f.links[id] = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeProducts) UnlinkAllSuppliers(ctx context.Context) (int64, error) {
	*f.calls = append(*f.calls, "unlinkAll")
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for id, sup := range f.links {
		if sup != nil {
			f.links[id] = nil
			n++
		}
	}
	return n, nil
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func ptr(v int64) *int64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc      *Service
	repo     *memoryRepo
	products *fakeProducts
	cache    *countingCache
	calls    []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.repo = newMemoryRepo(&f.calls)
	f.products = &fakeProducts{links: make(map[int64]*int64), calls: &f.calls}
	f.cache = &countingCache{}
	f.svc = NewService(f.repo, f.products, f.cache, discardLogger())
	return f
}

func TestDeleteUnlinksProductsBeforeRemovingSupplier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acme, err := f.svc.Add(ctx, Supplier{Name: "Acme", Email: "acme@example.com"})
	require.NoError(t, err)
	other, err := f.svc.Add(ctx, Supplier{Name: "Other"})
	require.NoError(t, err)

	f.products.links[1] = ptr(acme.ID)
	f.products.links[2] = ptr(acme.ID)
	f.products.links[3] = ptr(acme.ID)
	f.products.links[4] = ptr(other.ID)
	f.calls = nil

	require.NoError(t, f.svc.Delete(ctx, acme.ID))

	require.Equal(t, []string{"unlink", "delete"}, f.calls)
	for _, id := range []int64{1, 2, 3} {
		require.Nil(t, f.products.links[id])
	}
	require.Equal(t, other.ID, *f.products.links[4])

	_, err = f.svc.Get(ctx, acme.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMissingSupplierIsNotFound(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Delete(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, f.calls)
}

func TestDeleteStopsWhenUnlinkFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, err := f.svc.Add(ctx, Supplier{Name: "Acme"})
	require.NoError(t, err)
	f.products.err = errors.New("db down")
	f.calls = nil

	require.Error(t, f.svc.Delete(ctx, s.ID))
	require.Equal(t, []string{"unlink"}, f.calls)
	_, err = f.svc.Get(ctx, s.ID)
	require.NoError(t, err)
}

func TestDeleteAllLeavesNoSuppliersAndNullReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, _ := f.svc.Add(ctx, Supplier{Name: "A"})
	b, _ := f.svc.Add(ctx, Supplier{Name: "B"})
	f.products.links[1] = ptr(a.ID)
	f.products.links[2] = ptr(b.ID)
	f.products.links[3] = nil
	f.calls = nil

	require.NoError(t, f.svc.DeleteAll(ctx))

	require.Equal(t, []string{"unlinkAll", "deleteAll"}, f.calls)
	n, err := f.svc.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	for _, sup := range f.products.links {
		require.Nil(t, sup)
	}
}

func TestUpdateFullReplacesFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, _ := f.svc.Add(ctx, Supplier{Name: "Old", Mobile: "1", Email: "old@example.com", Company: "OldCo"})

	updated, err := f.svc.UpdateFull(ctx, s.ID, Supplier{ID: 777, Name: "New", Email: ""})
	require.NoError(t, err)
	require.Equal(t, Supplier{ID: s.ID, Name: "New"}, updated)

	_, err = f.svc.UpdateFull(ctx, 404, Supplier{Name: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMutationsBumpCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, _ := f.svc.Add(ctx, Supplier{Name: "A"})
	_, _ = f.svc.UpdateFull(ctx, s.ID, Supplier{Name: "B"})
	_ = f.svc.Delete(ctx, s.ID)
	_ = f.svc.DeleteAll(ctx)
	require.Equal(t, 4, f.cache.bumps)

	_, _ = f.svc.List(ctx)
	_, _ = f.svc.Count(ctx)
	require.Equal(t, 4, f.cache.bumps)
}

func TestAddAcceptsUnvalidatedFields(t *testing.T) {
	f := newFixture(t)
	s, err := f.svc.Add(context.Background(), Supplier{Email: "not-an-email", Mobile: "abc"})
	require.NoError(t, err)
	require.NotZero(t, s.ID)
}
