package stats

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// Service serves admin statistics through the cache, collapsing concurrent
// recomputations of the same key with singleflight.
type Service struct {
	repo             Repository
	cache            *Cache
	group            singleflight.Group
	defaultThreshold int
}

// NewService constructs a Service. defaultThreshold is used when a caller
// does not supply one.
func NewService(repo Repository, cache *Cache, defaultThreshold int) *Service {
	if defaultThreshold <= 0 {
		defaultThreshold = 10
	}
	return &Service{repo: repo, cache: cache, defaultThreshold: defaultThreshold}
}

// DefaultThreshold exposes the configured low-stock threshold.
func (s *Service) DefaultThreshold() int {
	return s.defaultThreshold
}

// Overview returns the catalog overview, cached.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	key, err := s.cache.BuildKey(ctx, keyOverview())
	if err != nil {
		return Overview{}, err
	}
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var ov Overview
		err := s.cache.FetchJSON(ctx, key, &ov, func(ctx context.Context) (interface{}, error) {
			return s.repo.Overview(ctx, s.defaultThreshold)
		})
		return ov, err
	})
	if err != nil {
		return Overview{}, err
	}
	return result.(Overview), nil
}

// LowStock returns products under the threshold, cached per threshold.
// A zero threshold falls back to the default.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", httpx.ErrValidation)
	}
	if threshold == 0 {
		threshold = s.defaultThreshold
	}
	key, err := s.cache.BuildKey(ctx, keyLowStock(threshold))
	if err != nil {
		return nil, err
	}
	result, err, _ := s.group.Do(key+":"+strconv.Itoa(threshold), func() (interface{}, error) {
		var items []LowStockItem
		err := s.cache.FetchJSON(ctx, key, &items, func(ctx context.Context) (interface{}, error) {
			return s.repo.LowStock(ctx, threshold)
		})
		return items, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]LowStockItem), nil
}

// Invalidate bumps the cache version after catalog mutations.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
