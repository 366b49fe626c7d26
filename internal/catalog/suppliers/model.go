package suppliers

import (
	"time"
)

// Supplier represents a supplier entity. OwnerUserID ties the record to the
// account allowed to manage it under the supplier role.
type Supplier struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ContactInfo  string    `json:"contact_info"`
	CreditRating float64   `json:"credit_rating"`
	OwnerUserID  int64     `json:"owner_user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListFilters narrows and orders a supplier listing.
type ListFilters struct {
	Search    string
	RatingMin *float64
	RatingMax *float64
	SortBy    string
	SortDir   string
}
