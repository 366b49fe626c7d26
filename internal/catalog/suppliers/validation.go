package suppliers

import (
	"fmt"
	"math"
	"strings"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

func validate(s Supplier) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(s.ContactInfo) == "" {
		return fmt.Errorf("%w: contact info is required", httpx.ErrValidation)
	}
	return validateRating(s.CreditRating)
}

// validateRating accepts ratings in [0,5] at half-star granularity.
func validateRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: credit rating must be between 0 and 5", httpx.ErrValidation)
	}
	halves := rating * 2
	if math.Abs(halves-math.Round(halves)) > 1e-9 {
		return fmt.Errorf("%w: credit rating must be in half-star steps", httpx.ErrValidation)
	}
	return nil
}
