package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catalogd/catalogd/internal/catalog/history"
	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filters ListFilters) ([]Product, error)
}

// TxRepository exposes the transactional operations used by the service.
// History appends ride the same transaction as the product mutation.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (Product, error)
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id int64, p Product) error
	Delete(ctx context.Context, id int64) (bool, error)
	LinkSupplier(ctx context.Context, productID, supplierID int64) error
	RemoveSupplierLinks(ctx context.Context, productID int64) error
	history.TxRecorder
}

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, COALESCE(description, ''), COALESCE(category, ''), price, stock_quantity, discount, created_at, updated_at`

// WithTx runs fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("products: begin tx: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	wrapper := &txRepo{tx: tx, recorder: history.NewRecorder(tx)}
	if err := fn(ctx, wrapper); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("products: commit tx: %w", errors.Join(httpx.ErrStorage, err))
	}
	return nil
}

// Get fetches a product by id.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

// Exists reports whether the product exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("products: exists: %w", errors.Join(httpx.ErrStorage, err))
	}
	return ok, nil
}

// List returns every product matching the filters, ordered per SortBy.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}

	if filters.Category != "" {
		args = append(args, filters.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	if filters.PriceMin != nil {
		args = append(args, *filters.PriceMin)
		query += ` AND price >= $` + strconv.Itoa(len(args))
	}
	if filters.PriceMax != nil {
		args = append(args, *filters.PriceMax)
		query += ` AND price <= $` + strconv.Itoa(len(args))
	}
	if filters.StockMin != nil {
		args = append(args, *filters.StockMin)
		query += ` AND stock_quantity >= $` + strconv.Itoa(len(args))
	}
	if filters.StockMax != nil {
		args = append(args, *filters.StockMax)
		query += ` AND stock_quantity <= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

type txRepo struct {
	tx       pgx.Tx
	recorder *history.Recorder
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return scanProduct(t.tx.QueryRow(ctx, query, id))
}

func (t *txRepo) Insert(ctx context.Context, p Product) (Product, error) {
	const query = `INSERT INTO products (name, description, category, price, stock_quantity, discount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now().UTC()
	err := t.tx.QueryRow(ctx, query, p.Name, p.Description, p.Category, p.Price, p.StockQuantity, p.Discount, now, now).Scan(&p.ID)
	if err != nil {
		return Product{}, mapPgError("products: insert", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (t *txRepo) Update(ctx context.Context, id int64, p Product) error {
	const query = `UPDATE products SET name = $1, description = $2, category = $3, price = $4,
		stock_quantity = $5, discount = $6, updated_at = $7 WHERE id = $8`
	tag, err := t.tx.Exec(ctx, query, p.Name, p.Description, p.Category, p.Price, p.StockQuantity, p.Discount, time.Now().UTC(), id)
	if err != nil {
		return mapPgError("products: update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", httpx.ErrNotFound, id)
	}
	return nil
}

// Delete removes the product row. History rows are left in place as the
// audit trail; association rows are removed separately.
func (t *txRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, mapPgError("products: delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (t *txRepo) LinkSupplier(ctx context.Context, productID, supplierID int64) error {
	const query = `INSERT INTO product_suppliers (product_id, supplier_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := t.tx.Exec(ctx, query, productID, supplierID); err != nil {
		return mapPgError("products: link supplier", err)
	}
	return nil
}

func (t *txRepo) RemoveSupplierLinks(ctx context.Context, productID int64) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM product_suppliers WHERE product_id = $1`, productID); err != nil {
		return mapPgError("products: remove supplier links", err)
	}
	return nil
}

func (t *txRepo) AppendPriceChange(ctx context.Context, change history.PriceChange) (int64, error) {
	return t.recorder.AppendPriceChange(ctx, change)
}

func (t *txRepo) AppendStockChange(ctx context.Context, change history.StockChange) (int64, error) {
	return t.recorder.AppendStockChange(ctx, change)
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.StockQuantity, &p.Discount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, fmt.Errorf("products: scan: %w", errors.Join(httpx.ErrStorage, err))
	}
	return p, nil
}

func scanProductRow(rows pgx.Rows) (Product, error) {
	var p Product
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.StockQuantity, &p.Discount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("products: scan: %w", errors.Join(httpx.ErrStorage, err))
	}
	return p, nil
}

func mapPgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", httpx.ErrConflict, op)
		case "23503":
			return fmt.Errorf("%w: referenced entity missing", httpx.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, errors.Join(httpx.ErrStorage, err))
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "price":
		return "price " + dir
	case "stock":
		return "stock_quantity " + dir
	case "created_at", "":
		return "created_at " + dir
	default:
		return "created_at " + dir
	}
}
