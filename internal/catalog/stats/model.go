package stats

// CategoryCount is one category bucket in the overview.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Overview aggregates catalog-wide figures for the admin dashboard.
type Overview struct {
	TotalProducts  int64           `json:"total_products"`
	TotalSuppliers int64           `json:"total_suppliers"`
	AveragePrice   float64         `json:"average_price"`
	TotalStock     int64           `json:"total_stock"`
	LowStockCount  int64           `json:"low_stock_count"`
	ByCategory     []CategoryCount `json:"by_category"`
}

// LowStockItem is one product below the stock threshold.
type LowStockItem struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	StockQuantity int    `json:"stock_quantity"`
}
