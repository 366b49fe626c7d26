package history

import (
	"context"
	"fmt"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// ProductChecker verifies product existence before a history query.
type ProductChecker interface {
	Exists(ctx context.Context, productID int64) (bool, error)
}

// Service serves read access to the audit trail.
type Service struct {
	repo     Repository
	products ProductChecker
}

// NewService constructs a Service.
func NewService(repo Repository, products ProductChecker) *Service {
	return &Service{repo: repo, products: products}
}

// PriceHistory returns price changes for a product, ascending by timestamp.
func (s *Service) PriceHistory(ctx context.Context, productID int64, rng TimeRange) ([]PriceChange, error) {
	if err := s.checkProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.PriceChanges(ctx, productID, rng)
}

// StockHistory returns stock changes for a product, ascending by timestamp.
func (s *Service) StockHistory(ctx context.Context, productID int64, rng TimeRange) ([]StockChange, error) {
	if err := s.checkProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.StockChanges(ctx, productID, rng)
}

// Combined merges both history kinds into one timestamp-ordered timeline.
func (s *Service) Combined(ctx context.Context, productID int64, rng TimeRange) ([]Entry, error) {
	if err := s.checkProduct(ctx, productID); err != nil {
		return nil, err
	}
	prices, err := s.repo.PriceChanges(ctx, productID, rng)
	if err != nil {
		return nil, err
	}
	stocks, err := s.repo.StockChanges(ctx, productID, rng)
	if err != nil {
		return nil, err
	}
	return mergeEntries(prices, stocks), nil
}

func (s *Service) checkProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: product %d", httpx.ErrNotFound, productID)
	}
	return nil
}

// mergeEntries interleaves two already-ascending sequences. Ties keep price
// entries first to stay deterministic.
func mergeEntries(prices []PriceChange, stocks []StockChange) []Entry {
	merged := make([]Entry, 0, len(prices)+len(stocks))
	i, j := 0, 0
	for i < len(prices) && j < len(stocks) {
		if !stocks[j].Timestamp.Before(prices[i].Timestamp) {
			merged = append(merged, priceEntry(prices[i]))
			i++
		} else {
			merged = append(merged, stockEntry(stocks[j]))
			j++
		}
	}
	for ; i < len(prices); i++ {
		merged = append(merged, priceEntry(prices[i]))
	}
	for ; j < len(stocks); j++ {
		merged = append(merged, stockEntry(stocks[j]))
	}
	return merged
}

func priceEntry(c PriceChange) Entry {
	return Entry{
		Kind:      FieldPrice,
		ID:        c.ID,
		ProductID: c.ProductID,
		OldValue:  c.OldPrice,
		NewValue:  c.NewPrice,
		Timestamp: c.Timestamp,
	}
}

func stockEntry(c StockChange) Entry {
	return Entry{
		Kind:      FieldStock,
		ID:        c.ID,
		ProductID: c.ProductID,
		OldValue:  float64(c.OldQuantity),
		NewValue:  float64(c.NewQuantity),
		Reason:    c.Reason,
		Timestamp: c.Timestamp,
	}
}
