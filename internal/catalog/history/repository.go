package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// Repository reads history records. There is deliberately no update or
// delete surface.
type Repository interface {
	PriceChanges(ctx context.Context, productID int64, rng TimeRange) ([]PriceChange, error)
	StockChanges(ctx context.Context, productID int64, rng TimeRange) ([]StockChange, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) PriceChanges(ctx context.Context, productID int64, rng TimeRange) ([]PriceChange, error) {
	query := `SELECT id, product_id, old_price, new_price, COALESCE(actor_id, 0), recorded_at
		FROM price_history WHERE product_id = $1`
	args := []any{productID}
	query, args = appendRangeClauses(query, args, rng)
	query += ` ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: price changes: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()

	var changes []PriceChange
	for rows.Next() {
		var c PriceChange
		if err := rows.Scan(&c.ID, &c.ProductID, &c.OldPrice, &c.NewPrice, &c.ActorID, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("history: scan price change: %w", errors.Join(httpx.ErrStorage, err))
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (r *repository) StockChanges(ctx context.Context, productID int64, rng TimeRange) ([]StockChange, error) {
	query := `SELECT id, product_id, old_quantity, new_quantity, COALESCE(change_reason, ''), COALESCE(actor_id, 0), recorded_at
		FROM stock_history WHERE product_id = $1`
	args := []any{productID}
	query, args = appendRangeClauses(query, args, rng)
	query += ` ORDER BY recorded_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: stock changes: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()

	var changes []StockChange
	for rows.Next() {
		var c StockChange
		if err := rows.Scan(&c.ID, &c.ProductID, &c.OldQuantity, &c.NewQuantity, &c.Reason, &c.ActorID, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("history: scan stock change: %w", errors.Join(httpx.ErrStorage, err))
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func appendRangeClauses(query string, args []any, rng TimeRange) (string, []any) {
	if !rng.From.IsZero() {
		args = append(args, rng.From)
		query += fmt.Sprintf(" AND recorded_at >= $%d", len(args))
	}
	if !rng.To.IsZero() {
		args = append(args, rng.To)
		query += fmt.Sprintf(" AND recorded_at <= $%d", len(args))
	}
	return query, args
}
