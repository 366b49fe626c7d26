package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/catalogd/catalogd/internal/catalog/products"
	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// MaxItems bounds a single batch request.
const MaxItems = 100

// UpdateItem pairs a product id with the patch to apply.
type UpdateItem struct {
	ID int64 `json:"id"`
	products.UpdateInput
}

// Coordinator runs batch product operations. Each item is processed in its
// own transaction so one bad item never rolls back its neighbors.
type Coordinator struct {
	logger   *slog.Logger
	products *products.Service
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(logger *slog.Logger, svc *products.Service) *Coordinator {
	return &Coordinator{logger: logger, products: svc}
}

// CreateAll creates every item, continuing past failures.
func (c *Coordinator) CreateAll(ctx context.Context, items []products.CreateInput) (*Report[products.Product], error) {
	if err := checkSize(len(items)); err != nil {
		return nil, err
	}
	report := newReport[products.Product](len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.skip(i, 0, "batch aborted: "+err.Error())
			continue
		}
		created, err := c.products.Create(ctx, item)
		if err != nil {
			c.logger.Warn("batch create item failed", slog.Int("index", i), slog.Any("error", err))
			report.fail(i, 0, err)
			continue
		}
		report.succeed(i, created.ID, &created)
	}
	return report, nil
}

// UpdateAll applies every patch, continuing past failures.
func (c *Coordinator) UpdateAll(ctx context.Context, items []UpdateItem) (*Report[products.Product], error) {
	if err := checkSize(len(items)); err != nil {
		return nil, err
	}
	report := newReport[products.Product](len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.skip(i, item.ID, "batch aborted: "+err.Error())
			continue
		}
		updated, err := c.products.Update(ctx, item.ID, item.UpdateInput)
		if err != nil {
			c.logger.Warn("batch update item failed", slog.Int("index", i), slog.Int64("id", item.ID), slog.Any("error", err))
			report.fail(i, item.ID, err)
			continue
		}
		report.succeed(i, item.ID, &updated)
	}
	return report, nil
}

// DeleteAll deletes every id, continuing past failures. Unknown ids fail
// their own entry only.
func (c *Coordinator) DeleteAll(ctx context.Context, ids []int64) (*Report[products.Product], error) {
	if err := checkSize(len(ids)); err != nil {
		return nil, err
	}
	report := newReport[products.Product](len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			report.skip(i, id, "batch aborted: "+err.Error())
			continue
		}
		if err := c.products.Delete(ctx, id); err != nil {
			c.logger.Warn("batch delete item failed", slog.Int("index", i), slog.Int64("id", id), slog.Any("error", err))
			report.fail(i, id, err)
			continue
		}
		report.succeed(i, id, nil)
	}
	return report, nil
}

func checkSize(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: batch payload is empty", httpx.ErrValidation)
	}
	if n > MaxItems {
		return fmt.Errorf("%w: batch size %d exceeds limit %d", httpx.ErrValidation, n, MaxItems)
	}
	return nil
}
