package suppliers

// CreateInput is the payload for creating a supplier.
type CreateInput struct {
	Name         string  `json:"name"`
	ContactInfo  string  `json:"contact_info"`
	CreditRating float64 `json:"credit_rating"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name         *string  `json:"name"`
	ContactInfo  *string  `json:"contact_info"`
	CreditRating *float64 `json:"credit_rating"`
}
