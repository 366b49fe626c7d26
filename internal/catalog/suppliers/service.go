package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// DefaultTopRatedLimit caps top-rated listings when no limit is given.
const DefaultTopRatedLimit = 10

// ProductChecker reports whether a product exists. Satisfied by the product
// service so association endpoints can reject unknown products.
type ProductChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// StatsInvalidator drops cached catalog aggregates after a mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service owns supplier business rules, including the ownership restriction
// for the supplier role.
type Service struct {
	repo     Repository
	products ProductChecker
	stats    StatsInvalidator
}

// NewService constructs a Service.
func NewService(repo Repository, products ProductChecker) *Service {
	return &Service{repo: repo, products: products}
}

// BindStatsInvalidator registers a cache to bump after successful mutations.
func (s *Service) BindStatsInvalidator(inv StatsInvalidator) {
	s.stats = inv
}

func (s *Service) bumpStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	// A failed bump is not a request failure; the cache TTL still expires it.
	_ = s.stats.Invalidate(ctx)
}

// List returns suppliers matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Supplier, error) {
	if filters.RatingMin != nil {
		if err := validateRating(*filters.RatingMin); err != nil {
			return nil, err
		}
	}
	if filters.RatingMax != nil {
		if err := validateRating(*filters.RatingMax); err != nil {
			return nil, err
		}
	}
	if filters.RatingMin != nil && filters.RatingMax != nil && *filters.RatingMin > *filters.RatingMax {
		return nil, fmt.Errorf("%w: rating range is inverted", httpx.ErrValidation)
	}
	return s.repo.List(ctx, filters)
}

// Get fetches a supplier by id.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create persists a new supplier. When the caller holds the supplier role the
// record is bound to their account so later mutations stay restricted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Supplier, error) {
	sup := Supplier{
		Name:         strings.TrimSpace(in.Name),
		ContactInfo:  strings.TrimSpace(in.ContactInfo),
		CreditRating: in.CreditRating,
	}
	if sub, ok := rbac.SubjectFromContext(ctx); ok && sub.Role == rbac.RoleSupplier {
		sup.OwnerUserID = sub.UserID
	}
	if err := validate(sup); err != nil {
		return Supplier{}, err
	}
	created, err := s.repo.Create(ctx, sup)
	if err != nil {
		return Supplier{}, err
	}
	s.bumpStats(ctx)
	return created, nil
}

// Update applies a partial update, subject to the ownership check.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	if err := s.authorizeMutation(ctx, current); err != nil {
		return Supplier{}, err
	}

	next := current
	if in.Name != nil {
		next.Name = strings.TrimSpace(*in.Name)
	}
	if in.ContactInfo != nil {
		next.ContactInfo = strings.TrimSpace(*in.ContactInfo)
	}
	if in.CreditRating != nil {
		next.CreditRating = *in.CreditRating
	}
	if err := validate(next); err != nil {
		return Supplier{}, err
	}
	if err := s.repo.Update(ctx, id, next); err != nil {
		return Supplier{}, err
	}
	s.bumpStats(ctx)
	return next, nil
}

// Delete removes a supplier and its product links, subject to the ownership
// check.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(ctx, current); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	s.bumpStats(ctx)
	return nil
}

// TopRated returns the highest rated suppliers. A zero limit falls back to
// the default; negative limits are rejected.
func (s *Service) TopRated(ctx context.Context, limit int) ([]Supplier, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", httpx.ErrValidation)
	}
	if limit == 0 {
		limit = DefaultTopRatedLimit
	}
	return s.repo.TopRated(ctx, limit)
}

// Associate links a supplier to a product. Linking an already linked pair is
// a no-op.
func (s *Service) Associate(ctx context.Context, productID, supplierID int64) error {
	if err := s.checkPair(ctx, productID, supplierID); err != nil {
		return err
	}
	return s.repo.Associate(ctx, productID, supplierID)
}

// Disassociate removes a product-supplier link. A missing link is reported
// as not found.
func (s *Service) Disassociate(ctx context.Context, productID, supplierID int64) error {
	if err := s.checkPair(ctx, productID, supplierID); err != nil {
		return err
	}
	removed, err := s.repo.Disassociate(ctx, productID, supplierID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: supplier %d is not linked to product %d", httpx.ErrNotFound, supplierID, productID)
	}
	return nil
}

// ForProduct lists the suppliers linked to a product.
func (s *Service) ForProduct(ctx context.Context, productID int64) ([]Supplier, error) {
	if err := s.checkProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ForProduct(ctx, productID)
}

// authorizeMutation lets admins mutate anything and suppliers mutate only
// the records bound to their account.
func (s *Service) authorizeMutation(ctx context.Context, sup Supplier) error {
	sub, ok := rbac.SubjectFromContext(ctx)
	if !ok {
		return httpx.ErrUnauthorized
	}
	if sub.Role == rbac.RoleAdmin {
		return nil
	}
	if sub.Role == rbac.RoleSupplier && sup.OwnerUserID == sub.UserID {
		return nil
	}
	return fmt.Errorf("%w: supplier record belongs to another account", httpx.ErrForbidden)
}

func (s *Service) checkPair(ctx context.Context, productID, supplierID int64) error {
	if err := s.checkProduct(ctx, productID); err != nil {
		return err
	}
	if supplierID <= 0 {
		return fmt.Errorf("%w: invalid supplier id", httpx.ErrValidation)
	}
	if _, err := s.repo.Get(ctx, supplierID); err != nil {
		return err
	}
	return nil
}

func (s *Service) checkProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: product %d", httpx.ErrNotFound, productID)
	}
	return nil
}
