package products

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/catalogd/catalogd/internal/catalog/history"
	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// StatsInvalidator drops cached catalog aggregates after a mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service owns product mutation rules. Price and stock changes are mirrored
// into the history tables inside the same transaction as the field update.
type Service struct {
	repo  RepositoryPort
	stats StatsInvalidator
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
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

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Exists reports whether a product exists.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

// List returns all products matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, error) {
	if filters.PriceMin != nil && filters.PriceMax != nil && *filters.PriceMin > *filters.PriceMax {
		return nil, fmt.Errorf("%w: price range is inverted", httpx.ErrValidation)
	}
	if filters.StockMin != nil && filters.StockMax != nil && *filters.StockMin > *filters.StockMax {
		return nil, fmt.Errorf("%w: stock range is inverted", httpx.ErrValidation)
	}
	return s.repo.List(ctx, filters)
}

// Create validates and persists a new product, linking suppliers when given.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	p := Product{
		Name:          normalizeName(in.Name),
		Description:   strings.TrimSpace(in.Description),
		Category:      strings.TrimSpace(in.Category),
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		Discount:      in.Discount,
	}
	if err := validate(p); err != nil {
		return Product{}, err
	}

	var created Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created, err = tx.Insert(ctx, p)
		if err != nil {
			return err
		}
		for _, supplierID := range in.SupplierIDs {
			if err := tx.LinkSupplier(ctx, created.ID, supplierID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	s.bumpStats(ctx)
	return created, nil
}

// Update applies a partial update. Price and stock changes each append one
// history record within the update's transaction; if the append fails the
// whole unit rolls back.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	if in.Empty() {
		return s.repo.Get(ctx, id)
	}

	var updated Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next := applyPatch(current, in)
		if err := validate(next); err != nil {
			return err
		}

		actorID := actorFromContext(ctx)
		if next.Price != current.Price {
			_, err := tx.AppendPriceChange(ctx, history.PriceChange{
				ProductID: id,
				OldPrice:  current.Price,
				NewPrice:  next.Price,
				ActorID:   actorID,
			})
			if err != nil {
				return err
			}
		}
		if next.StockQuantity != current.StockQuantity {
			_, err := tx.AppendStockChange(ctx, history.StockChange{
				ProductID:   id,
				OldQuantity: current.StockQuantity,
				NewQuantity: next.StockQuantity,
				Reason:      strings.TrimSpace(in.ChangeReason),
				ActorID:     actorID,
			})
			if err != nil {
				return err
			}
		}

		if err := tx.Update(ctx, id, next); err != nil {
			return err
		}
		updated = next
		updated.ID = id
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	s.bumpStats(ctx)
	return updated, nil
}

// Delete removes a product and its supplier links. History records survive
// as the audit trail.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.RemoveSupplierLinks(ctx, id); err != nil {
			return err
		}
		deleted, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: product %d", httpx.ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.bumpStats(ctx)
	return nil
}

func applyPatch(current Product, in UpdateInput) Product {
	next := current
	if in.Name != nil {
		next.Name = normalizeName(*in.Name)
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		next.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		next.Price = *in.Price
	}
	if in.StockQuantity != nil {
		next.StockQuantity = *in.StockQuantity
	}
	if in.Discount != nil {
		next.Discount = *in.Discount
	}
	return next
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func actorFromContext(ctx context.Context) int64 {
	if sub, ok := rbac.SubjectFromContext(ctx); ok {
		return sub.UserID
	}
	return 0
}
