package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// TxRecorder appends history records. Implementations are bound to the same
// transaction as the product mutation so the pair commits or rolls back as a
// unit. Records are never updated or deleted by any code path.
type TxRecorder interface {
	AppendPriceChange(ctx context.Context, change PriceChange) (int64, error)
	AppendStockChange(ctx context.Context, change StockChange) (int64, error)
}

// DBTX is the subset of pgx executors the recorder needs. Both pgx.Tx and
// *pgxpool.Pool satisfy it.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Recorder writes price and stock history rows through a pgx executor.
type Recorder struct {
	db DBTX
}

// NewRecorder binds a Recorder to an executor (normally a transaction).
func NewRecorder(db DBTX) *Recorder {
	return &Recorder{db: db}
}

// AppendPriceChange inserts a price history record and returns its id.
func (r *Recorder) AppendPriceChange(ctx context.Context, change PriceChange) (int64, error) {
	const query = `INSERT INTO price_history (product_id, old_price, new_price, actor_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	ts := change.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRow(ctx, query, change.ProductID, change.OldPrice, change.NewPrice, nullableID(change.ActorID), ts).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("history: append price change: %w", errors.Join(httpx.ErrStorage, err))
	}
	return id, nil
}

// AppendStockChange inserts a stock history record and returns its id.
func (r *Recorder) AppendStockChange(ctx context.Context, change StockChange) (int64, error) {
	const query = `INSERT INTO stock_history (product_id, old_quantity, new_quantity, change_reason, actor_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	ts := change.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRow(ctx, query, change.ProductID, change.OldQuantity, change.NewQuantity, change.Reason, nullableID(change.ActorID), ts).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("history: append stock change: %w", errors.Join(httpx.ErrStorage, err))
	}
	return id, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
