package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalogd/internal/catalog/history"
	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

type memoryRepo struct {
	products     map[int64]Product
	links        map[int64][]int64
	priceChanges []history.PriceChange
	stockChanges []history.StockChange
	nextID       int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[int64]Product),
		links:    make(map[int64][]int64),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return Product{}, httpx.ErrNotFound
}

func (r *memoryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := r.products[id]
	return ok, nil
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Product, error) {
	result := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if filters.PriceMin != nil && p.Price < *filters.PriceMin {
			continue
		}
		if filters.PriceMax != nil && p.Price > *filters.PriceMax {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, id int64) (Product, error) {
	return tx.repo.Get(ctx, id)
}

func (tx *memoryTx) Insert(ctx context.Context, p Product) (Product, error) {
	tx.repo.nextID++
	p.ID = tx.repo.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	tx.repo.products[p.ID] = p
	return p, nil
}

func (tx *memoryTx) Update(ctx context.Context, id int64, p Product) error {
	if _, ok := tx.repo.products[id]; !ok {
		return httpx.ErrNotFound
	}
	p.ID = id
	tx.repo.products[id] = p
	return nil
}

func (tx *memoryTx) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := tx.repo.products[id]; !ok {
		return false, nil
	}
	delete(tx.repo.products, id)
	return true, nil
}

func (tx *memoryTx) LinkSupplier(ctx context.Context, productID, supplierID int64) error {
	tx.repo.links[productID] = append(tx.repo.links[productID], supplierID)
	return nil
}

func (tx *memoryTx) RemoveSupplierLinks(ctx context.Context, productID int64) error {
	delete(tx.repo.links, productID)
	return nil
}

func (tx *memoryTx) AppendPriceChange(ctx context.Context, change history.PriceChange) (int64, error) {
	tx.repo.priceChanges = append(tx.repo.priceChanges, change)
	return int64(len(tx.repo.priceChanges)), nil
}

func (tx *memoryTx) AppendStockChange(ctx context.Context, change history.StockChange) (int64, error) {
	tx.repo.stockChanges = append(tx.repo.stockChanges, change)
	return int64(len(tx.repo.stockChanges)), nil
}

func TestCreateAndGetProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Name:          "  Gaming Laptop ",
		Description:   "High end",
		Category:      "electronics",
		Price:         1299.99,
		StockQuantity: 5,
		SupplierIDs:   []int64{7, 9},
	})
	require.NoError(t, err)
	require.Equal(t, "Gaming Laptop", created.Name)
	require.NotZero(t, created.ID)
	require.ElementsMatch(t, []int64{7, 9}, repo.links[created.ID])

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.InDelta(t, 1299.99, got.Price, 0.0001)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "   ", Price: 10}},
		{"zero price", CreateInput{Name: "Widget", Price: 0}},
		{"negative price", CreateInput{Name: "Widget", Price: -5}},
		{"sub-cent price", CreateInput{Name: "Widget", Price: 9.999}},
		{"negative stock", CreateInput{Name: "Widget", Price: 10, StockQuantity: -1}},
		{"discount above range", CreateInput{Name: "Widget", Price: 10, Discount: 101}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			require.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
	require.Empty(t, repo.products)
}

func TestUpdateRecordsPriceHistory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := rbac.ContextWithSubject(context.Background(), rbac.Subject{UserID: 42, Role: rbac.RoleAdmin})

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00, StockQuantity: 3})
	require.NoError(t, err)

	newPrice := 12.50
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Price: &newPrice})
	require.NoError(t, err)
	require.InDelta(t, 12.50, updated.Price, 0.0001)

	require.Len(t, repo.priceChanges, 1)
	change := repo.priceChanges[0]
	require.Equal(t, created.ID, change.ProductID)
	require.InDelta(t, 10.00, change.OldPrice, 0.0001)
	require.InDelta(t, 12.50, change.NewPrice, 0.0001)
	require.Equal(t, int64(42), change.ActorID)
	require.Empty(t, repo.stockChanges)
}

func TestUpdateRecordsStockHistoryWithReason(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00, StockQuantity: 3})
	require.NoError(t, err)

	newStock := 8
	_, err = svc.Update(ctx, created.ID, UpdateInput{StockQuantity: &newStock, ChangeReason: "restock"})
	require.NoError(t, err)

	require.Len(t, repo.stockChanges, 1)
	change := repo.stockChanges[0]
	require.Equal(t, 3, change.OldQuantity)
	require.Equal(t, 8, change.NewQuantity)
	require.Equal(t, "restock", change.Reason)
	require.Empty(t, repo.priceChanges)
}

func TestUpdateSameValueWritesNoHistory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00, StockQuantity: 3})
	require.NoError(t, err)

	samePrice := 10.00
	sameStock := 3
	name := "Widget Pro"
	_, err = svc.Update(ctx, created.ID, UpdateInput{Name: &name, Price: &samePrice, StockQuantity: &sameStock})
	require.NoError(t, err)

	require.Empty(t, repo.priceChanges)
	require.Empty(t, repo.stockChanges)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Widget Pro", got.Name)
}

func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00, StockQuantity: 3})
	require.NoError(t, err)

	got, err := svc.Update(ctx, created.ID, UpdateInput{})
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.InDelta(t, 10.00, got.Price, 0.0001)
	require.Empty(t, repo.priceChanges)
	require.Empty(t, repo.stockChanges)
}

func TestUpdateInvalidPatchRollsBack(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00, StockQuantity: 3})
	require.NoError(t, err)

	badPrice := -4.0
	_, err = svc.Update(ctx, created.ID, UpdateInput{Price: &badPrice})
	require.ErrorIs(t, err, httpx.ErrValidation)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.InDelta(t, 10.00, got.Price, 0.0001)
	require.Empty(t, repo.priceChanges)
}

// failingAppendRepo simulates the history insert failing mid-transaction.
// fn returning an error aborts before any product write reaches the store.
type failingAppendRepo struct {
	*memoryRepo
}

type failingAppendTx struct {
	memoryTx
}

func (r *failingAppendRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &failingAppendTx{memoryTx{repo: r.memoryRepo}})
}

func (tx *failingAppendTx) AppendPriceChange(ctx context.Context, change history.PriceChange) (int64, error) {
	return 0, errors.Join(httpx.ErrStorage, errors.New("history insert failed"))
}

func (tx *failingAppendTx) AppendStockChange(ctx context.Context, change history.StockChange) (int64, error) {
	return 0, errors.Join(httpx.ErrStorage, errors.New("history insert failed"))
}

func TestUpdateFailsWhenHistoryAppendFails(t *testing.T) {
	repo := newMemoryRepo()
	ctx := context.Background()

	created, err := NewService(repo).Create(ctx, CreateInput{Name: "Widget", Price: 10.00, StockQuantity: 3})
	require.NoError(t, err)

	svc := NewService(&failingAppendRepo{memoryRepo: repo})

	newPrice := 12.50
	_, err = svc.Update(ctx, created.ID, UpdateInput{Price: &newPrice})
	require.ErrorIs(t, err, httpx.ErrStorage)

	newStock := 9
	_, err = svc.Update(ctx, created.ID, UpdateInput{StockQuantity: &newStock})
	require.ErrorIs(t, err, httpx.ErrStorage)

	// The aborted transactions left neither the product nor the history
	// trail touched.
	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.InDelta(t, 10.00, got.Price, 0.0001)
	require.Equal(t, 3, got.StockQuantity)
	require.Empty(t, repo.priceChanges)
	require.Empty(t, repo.stockChanges)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewService(newMemoryRepo())

	price := 10.0
	_, err := svc.Update(context.Background(), 999, UpdateInput{Price: &price})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteRemovesProductAndLinks(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00, SupplierIDs: []int64{3}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, ok := repo.links[created.ID]
	require.False(t, ok)

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

func TestMutationsBumpStatsCache(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	inv := &countingInvalidator{}
	svc.BindStatsInvalidator(inv)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Widget", Price: 10.00})
	require.NoError(t, err)
	require.Equal(t, 1, inv.calls)

	newPrice := 11.0
	_, err = svc.Update(ctx, created.ID, UpdateInput{Price: &newPrice})
	require.NoError(t, err)
	require.Equal(t, 2, inv.calls)

	badPrice := -1.0
	_, err = svc.Update(ctx, created.ID, UpdateInput{Price: &badPrice})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, 2, inv.calls)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Equal(t, 3, inv.calls)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), httpx.ErrNotFound)
	require.Equal(t, 3, inv.calls)
}

func TestListRejectsInvertedRanges(t *testing.T) {
	svc := NewService(newMemoryRepo())

	lo, hi := 5.0, 50.0
	_, err := svc.List(context.Background(), ListFilters{PriceMin: &hi, PriceMax: &lo})
	require.ErrorIs(t, err, httpx.ErrValidation)

	smin, smax := 10, 1
	_, err = svc.List(context.Background(), ListFilters{StockMin: &smin, StockMax: &smax})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
