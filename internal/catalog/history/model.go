package history

import "time"

// FieldKind names the tracked product field.
type FieldKind string

const (
	FieldPrice FieldKind = "price"
	FieldStock FieldKind = "stock"
)

// PriceChange is an immutable audit record of a product price mutation.
type PriceChange struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	OldPrice  float64   `json:"old_price"`
	NewPrice  float64   `json:"new_price"`
	ActorID   int64     `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StockChange is an immutable audit record of a stock quantity mutation.
type StockChange struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	Reason      string    `json:"change_reason,omitempty"`
	ActorID     int64     `json:"actor_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Entry is one row of the combined timeline across both kinds.
type Entry struct {
	Kind      FieldKind `json:"kind"`
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	OldValue  float64   `json:"old_value"`
	NewValue  float64   `json:"new_value"`
	Reason    string    `json:"change_reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TimeRange bounds a history query. Zero values mean unbounded.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the range.
func (r TimeRange) Contains(ts time.Time) bool {
	if !r.From.IsZero() && ts.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && ts.After(r.To) {
		return false
	}
	return true
}
