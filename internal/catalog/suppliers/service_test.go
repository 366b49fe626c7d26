package suppliers

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

type memoryRepo struct {
	suppliers map[int64]Supplier
	links     map[[2]int64]bool
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		suppliers: make(map[int64]Supplier),
		links:     make(map[[2]int64]bool),
	}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Supplier, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		if filters.RatingMin != nil && s.CreditRating < *filters.RatingMin {
			continue
		}
		if filters.RatingMax != nil && s.CreditRating > *filters.RatingMax {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	if s, ok := r.suppliers[id]; ok {
		return s, nil
	}
	return Supplier{}, httpx.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, s Supplier) (Supplier, error) {
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	r.suppliers[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, s Supplier) error {
	if _, ok := r.suppliers[id]; !ok {
		return httpx.ErrNotFound
	}
	s.ID = id
	r.suppliers[id] = s
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := r.suppliers[id]; !ok {
		return false, nil
	}
	delete(r.suppliers, id)
	for link := range r.links {
		if link[1] == id {
			delete(r.links, link)
		}
	}
	return true, nil
}

func (r *memoryRepo) TopRated(ctx context.Context, limit int) ([]Supplier, error) {
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreditRating != out[j].CreditRating {
			return out[i].CreditRating > out[j].CreditRating
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) Associate(ctx context.Context, productID, supplierID int64) error {
	r.links[[2]int64{productID, supplierID}] = true
	return nil
}

func (r *memoryRepo) Disassociate(ctx context.Context, productID, supplierID int64) (bool, error) {
	key := [2]int64{productID, supplierID}
	if !r.links[key] {
		return false, nil
	}
	delete(r.links, key)
	return true, nil
}

func (r *memoryRepo) ForProduct(ctx context.Context, productID int64) ([]Supplier, error) {
	var out []Supplier
	for link := range r.links {
		if link[0] == productID {
			if s, ok := r.suppliers[link[1]]; ok {
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubProducts struct {
	existing map[int64]bool
}

func (s stubProducts) Exists(ctx context.Context, id int64) (bool, error) {
	return s.existing[id], nil
}

func adminCtx() context.Context {
	return rbac.ContextWithSubject(context.Background(), rbac.Subject{UserID: 1, Role: rbac.RoleAdmin})
}

func supplierCtx(userID int64) context.Context {
	return rbac.ContextWithSubject(context.Background(), rbac.Subject{UserID: userID, Role: rbac.RoleSupplier})
}

func TestCreateValidatesRating(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubProducts{})

	cases := []struct {
		rating float64
		ok     bool
	}{
		{0, true},
		{2.5, true},
		{5, true},
		{2.3, false},
		{5.5, false},
		{-0.5, false},
	}
	for _, tc := range cases {
		_, err := svc.Create(adminCtx(), CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: tc.rating})
		if tc.ok {
			require.NoError(t, err, "rating %v", tc.rating)
		} else {
			require.ErrorIs(t, err, httpx.ErrValidation, "rating %v", tc.rating)
		}
	}
}

func TestCreateBySupplierBindsOwner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{})

	created, err := svc.Create(supplierCtx(77), CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)
	require.Equal(t, int64(77), created.OwnerUserID)
}

func TestUpdateOwnershipEnforced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{})

	created, err := svc.Create(supplierCtx(77), CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)

	name := "Acme Updated"
	_, err = svc.Update(supplierCtx(88), created.ID, UpdateInput{Name: &name})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	updated, err := svc.Update(supplierCtx(77), created.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Acme Updated", updated.Name)

	rating := 4.5
	updated, err = svc.Update(adminCtx(), created.ID, UpdateInput{CreditRating: &rating})
	require.NoError(t, err)
	require.InDelta(t, 4.5, updated.CreditRating, 0.0001)
}

func TestDeleteOwnershipEnforced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{})

	created, err := svc.Create(supplierCtx(77), CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(supplierCtx(88), created.ID), httpx.ErrForbidden)
	require.NoError(t, svc.Delete(supplierCtx(77), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestTopRatedOrderingAndLimit(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{})
	ctx := adminCtx()

	ratings := []float64{3, 5, 4.5, 5, 2}
	for _, r := range ratings {
		_, err := svc.Create(ctx, CreateInput{Name: "S", ContactInfo: "s@example.com", CreditRating: r})
		require.NoError(t, err)
	}

	top, err := svc.TopRated(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	require.InDelta(t, 5, top[0].CreditRating, 0.0001)
	require.InDelta(t, 5, top[1].CreditRating, 0.0001)
	// Equal ratings tie-break on insertion order via id.
	require.Less(t, top[0].ID, top[1].ID)
	require.InDelta(t, 4.5, top[2].CreditRating, 0.0001)

	_, err = svc.TopRated(ctx, -1)
	require.ErrorIs(t, err, httpx.ErrValidation)

	all, err := svc.TopRated(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, len(ratings))
}

func TestAssociateIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{existing: map[int64]bool{10: true}})
	ctx := adminCtx()

	created, err := svc.Create(ctx, CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)

	require.NoError(t, svc.Associate(ctx, 10, created.ID))
	require.NoError(t, svc.Associate(ctx, 10, created.ID))

	linked, err := svc.ForProduct(ctx, 10)
	require.NoError(t, err)
	require.Len(t, linked, 1)
}

func TestAssociateUnknownProductOrSupplier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{existing: map[int64]bool{10: true}})
	ctx := adminCtx()

	created, err := svc.Create(ctx, CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Associate(ctx, 999, created.ID), httpx.ErrNotFound)
	require.ErrorIs(t, svc.Associate(ctx, 10, 999), httpx.ErrNotFound)
}

func TestDisassociateMissingLink(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, stubProducts{existing: map[int64]bool{10: true}})
	ctx := adminCtx()

	created, err := svc.Create(ctx, CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Disassociate(ctx, 10, created.ID), httpx.ErrNotFound)

	require.NoError(t, svc.Associate(ctx, 10, created.ID))
	require.NoError(t, svc.Disassociate(ctx, 10, created.ID))
	require.ErrorIs(t, svc.Disassociate(ctx, 10, created.ID), httpx.ErrNotFound)
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
	svc := NewService(repo, stubProducts{})
	inv := &countingInvalidator{}
	svc.BindStatsInvalidator(inv)
	ctx := adminCtx()

	created, err := svc.Create(ctx, CreateInput{Name: "Acme", ContactInfo: "acme@example.com", CreditRating: 4})
	require.NoError(t, err)
	require.Equal(t, 1, inv.calls)

	rating := 7.0
	_, err = svc.Update(ctx, created.ID, UpdateInput{CreditRating: &rating})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, 1, inv.calls)

	good := 4.5
	_, err = svc.Update(ctx, created.ID, UpdateInput{CreditRating: &good})
	require.NoError(t, err)
	require.Equal(t, 2, inv.calls)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Equal(t, 3, inv.calls)
}

func TestListRejectsInvalidRatingRange(t *testing.T) {
	svc := NewService(newMemoryRepo(), stubProducts{})

	lo, hi := 1.0, 4.0
	_, err := svc.List(context.Background(), ListFilters{RatingMin: &hi, RatingMax: &lo})
	require.ErrorIs(t, err, httpx.ErrValidation)

	bad := 7.0
	_, err = svc.List(context.Background(), ListFilters{RatingMin: &bad})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
