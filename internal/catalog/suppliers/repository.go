package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// Repository persists suppliers and the product association table.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, s Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, s Supplier) error
	Delete(ctx context.Context, id int64) (bool, error)
	TopRated(ctx context.Context, limit int) ([]Supplier, error)
	Associate(ctx context.Context, productID, supplierID int64) error
	Disassociate(ctx context.Context, productID, supplierID int64) (bool, error)
	ForProduct(ctx context.Context, productID int64) ([]Supplier, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const supplierColumns = `id, name, contact_info, credit_rating, COALESCE(owner_user_id, 0), created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.RatingMin != nil {
		args = append(args, *filters.RatingMin)
		query += ` AND credit_rating >= $` + strconv.Itoa(len(args))
	}
	if filters.RatingMax != nil {
		args = append(args, *filters.RatingMax)
		query += ` AND credit_rating <= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("suppliers: list: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	var s Supplier
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.ContactInfo, &s.CreditRating, &s.OwnerUserID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, httpx.ErrNotFound
		}
		return Supplier{}, fmt.Errorf("suppliers: get: %w", errors.Join(httpx.ErrStorage, err))
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	const query = `INSERT INTO suppliers (name, contact_info, credit_rating, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, s.Name, s.ContactInfo, s.CreditRating, nullableID(s.OwnerUserID), now, now).Scan(&s.ID)
	if err != nil {
		return Supplier{}, mapPgError("suppliers: create", err)
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return s, nil
}

func (r *repository) Update(ctx context.Context, id int64, s Supplier) error {
	const query = `UPDATE suppliers SET name = $1, contact_info = $2, credit_rating = $3, updated_at = $4 WHERE id = $5`
	tag, err := r.db.Exec(ctx, query, s.Name, s.ContactInfo, s.CreditRating, time.Now().UTC(), id)
	if err != nil {
		return mapPgError("suppliers: update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier %d", httpx.ErrNotFound, id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	if _, err := r.db.Exec(ctx, `DELETE FROM product_suppliers WHERE supplier_id = $1`, id); err != nil {
		return false, mapPgError("suppliers: delete links", err)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return false, mapPgError("suppliers: delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TopRated orders by rating descending with ascending id as the tiebreak so
// results stay deterministic.
func (r *repository) TopRated(ctx context.Context, limit int) ([]Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY credit_rating DESC, id ASC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("suppliers: top rated: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()
	return collect(rows)
}

// Associate inserts the association if absent; an existing pair is a no-op.
func (r *repository) Associate(ctx context.Context, productID, supplierID int64) error {
	const query = `INSERT INTO product_suppliers (product_id, supplier_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.Exec(ctx, query, productID, supplierID); err != nil {
		return mapPgError("suppliers: associate", err)
	}
	return nil
}

func (r *repository) Disassociate(ctx context.Context, productID, supplierID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_suppliers WHERE product_id = $1 AND supplier_id = $2`, productID, supplierID)
	if err != nil {
		return false, mapPgError("suppliers: disassociate", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) ForProduct(ctx context.Context, productID int64) ([]Supplier, error) {
	query := `SELECT s.id, s.name, s.contact_info, s.credit_rating, COALESCE(s.owner_user_id, 0), s.created_at, s.updated_at
		FROM suppliers s
		JOIN product_suppliers ps ON ps.supplier_id = s.id
		WHERE ps.product_id = $1
		ORDER BY s.id ASC`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("suppliers: for product: %w", errors.Join(httpx.ErrStorage, err))
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Supplier, error) {
	var result []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactInfo, &s.CreditRating, &s.OwnerUserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("suppliers: scan: %w", errors.Join(httpx.ErrStorage, err))
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
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
	case "credit_rating":
		return "credit_rating " + dir
	case "created_at":
		return "created_at " + dir
	case "name", "":
		return "name " + dir
	default:
		return "name " + dir
	}
}
