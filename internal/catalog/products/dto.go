package products

// CreateInput carries the fields for a new product. Supplier links, when
// present, are created inside the same transaction as the product row.
type CreateInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Discount      float64 `json:"discount"`
	SupplierIDs   []int64 `json:"supplier_ids,omitempty"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Price         *float64 `json:"price"`
	StockQuantity *int     `json:"stock_quantity"`
	Discount      *float64 `json:"discount"`
	ChangeReason  string   `json:"change_reason,omitempty"`
}

// Empty reports whether the patch carries no field changes.
func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.Description == nil && in.Category == nil &&
		in.Price == nil && in.StockQuantity == nil && in.Discount == nil
}

// ListFilters narrows and orders a product listing. The full matching set is
// returned; there is no pagination.
type ListFilters struct {
	Category string
	PriceMin *float64
	PriceMax *float64
	StockMin *int
	StockMax *int
	SortBy   string
	SortDir  string
}
