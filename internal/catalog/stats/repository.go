package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// Repository reads aggregate figures straight from Postgres.
type Repository interface {
	Overview(ctx context.Context, lowStockThreshold int) (Overview, error)
	LowStock(ctx context.Context, threshold int) ([]LowStockItem, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Overview(ctx context.Context, lowStockThreshold int) (Overview, error) {
	const totals = `SELECT
		(SELECT COUNT(*) FROM products),
		(SELECT COUNT(*) FROM suppliers),
		(SELECT COALESCE(AVG(price), 0) FROM products),
		(SELECT COALESCE(SUM(stock_quantity), 0) FROM products),
		(SELECT COUNT(*) FROM products WHERE stock_quantity < $1)`

	var ov Overview
	err := r.db.QueryRow(ctx, totals, lowStockThreshold).Scan(
		&ov.TotalProducts, &ov.TotalSuppliers, &ov.AveragePrice, &ov.TotalStock, &ov.LowStockCount,
	)
	if err != nil {
		return Overview{}, fmt.Errorf("stats: overview totals: %w", errors.Join(httpx.ErrStorage, err))
	}

	const byCategory = `SELECT category, COUNT(*) FROM products GROUP BY category ORDER BY COUNT(*) DESC, category ASC`
	rows, err := r.db.Query(ctx, byCategory)
	if err != nil {
		return Overview{}, fmt.Errorf("stats: overview categories: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return Overview{}, fmt.Errorf("stats: scan category: %w", errors.Join(httpx.ErrStorage, err))
		}
		ov.ByCategory = append(ov.ByCategory, cc)
	}
	if err := rows.Err(); err != nil {
		return Overview{}, fmt.Errorf("stats: overview categories: %w", errors.Join(httpx.ErrStorage, err))
	}
	if ov.ByCategory == nil {
		ov.ByCategory = []CategoryCount{}
	}
	return ov, nil
}

func (r *repository) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	const query = `SELECT id, name, category, stock_quantity
		FROM products
		WHERE stock_quantity < $1
		ORDER BY stock_quantity ASC, id ASC`
	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("stats: low stock: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()

	items := []LowStockItem{}
	for rows.Next() {
		var item LowStockItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Category, &item.StockQuantity); err != nil {
			return nil, fmt.Errorf("stats: scan low stock: %w", errors.Join(httpx.ErrStorage, err))
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
