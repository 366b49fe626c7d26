package batch

import (
	"context"
	"log/slog"

	"github.com/catalogd/catalogd/internal/catalog/suppliers"
)

// SupplierCoordinator runs batch supplier operations with the same per-item
// isolation as the product coordinator. Ownership rules apply to each item
// individually, so a supplier-role caller gets a per-item forbidden entry
// for records bound to another account.
type SupplierCoordinator struct {
	logger    *slog.Logger
	suppliers *suppliers.Service
}

// NewSupplierCoordinator constructs a SupplierCoordinator.
func NewSupplierCoordinator(logger *slog.Logger, svc *suppliers.Service) *SupplierCoordinator {
	return &SupplierCoordinator{logger: logger, suppliers: svc}
}

// CreateAll creates every supplier, continuing past failures.
func (c *SupplierCoordinator) CreateAll(ctx context.Context, items []suppliers.CreateInput) (*Report[suppliers.Supplier], error) {
	if err := checkSize(len(items)); err != nil {
		return nil, err
	}
	report := newReport[suppliers.Supplier](len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.skip(i, 0, "batch aborted: "+err.Error())
			continue
		}
		created, err := c.suppliers.Create(ctx, item)
		if err != nil {
			c.logger.Warn("batch supplier create item failed", slog.Int("index", i), slog.Any("error", err))
			report.fail(i, 0, err)
			continue
		}
		report.succeed(i, created.ID, &created)
	}
	return report, nil
}

// UpdateAll applies one patch to every id, continuing past failures.
func (c *SupplierCoordinator) UpdateAll(ctx context.Context, ids []int64, patch suppliers.UpdateInput) (*Report[suppliers.Supplier], error) {
	if err := checkSize(len(ids)); err != nil {
		return nil, err
	}
	report := newReport[suppliers.Supplier](len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			report.skip(i, id, "batch aborted: "+err.Error())
			continue
		}
		updated, err := c.suppliers.Update(ctx, id, patch)
		if err != nil {
			c.logger.Warn("batch supplier update item failed", slog.Int("index", i), slog.Int64("id", id), slog.Any("error", err))
			report.fail(i, id, err)
			continue
		}
		report.succeed(i, id, &updated)
	}
	return report, nil
}

// DeleteAll deletes every id, continuing past failures.
func (c *SupplierCoordinator) DeleteAll(ctx context.Context, ids []int64) (*Report[suppliers.Supplier], error) {
	if err := checkSize(len(ids)); err != nil {
		return nil, err
	}
	report := newReport[suppliers.Supplier](len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			report.skip(i, id, "batch aborted: "+err.Error())
			continue
		}
		if err := c.suppliers.Delete(ctx, id); err != nil {
			c.logger.Warn("batch supplier delete item failed", slog.Int("index", i), slog.Int64("id", id), slog.Any("error", err))
			report.fail(i, id, err)
			continue
		}
		report.succeed(i, id, nil)
	}
	return report, nil
}
