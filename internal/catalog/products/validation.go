package products

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

const (
	nameMinLen = 1
	nameMaxLen = 100
)

func validate(p Product) error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
	}
	if !hasTwoDecimalPrecision(p.Price) {
		return fmt.Errorf("%w: price must have at most two decimal places", httpx.ErrValidation)
	}
	if p.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity must not be negative", httpx.ErrValidation)
	}
	if p.Discount < 0 || p.Discount > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", httpx.ErrValidation)
	}
	return nil
}

func validateName(name string) error {
	name = norm.NFC.String(strings.TrimSpace(name))
	count := utf8.RuneCountInString(name)
	if count < nameMinLen || count > nameMaxLen {
		return fmt.Errorf("%w: name must be 1-100 characters", httpx.ErrValidation)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: name must contain only printable characters", httpx.ErrValidation)
		}
	}
	return nil
}

// hasTwoDecimalPrecision accepts prices representable in whole cents.
func hasTwoDecimalPrecision(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}
