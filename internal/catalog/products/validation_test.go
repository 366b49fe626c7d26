package products

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single character", "A", false},
		{"max length", strings.Repeat("a", 100), false},
		{"unicode within limit", strings.Repeat("é", 100), false},
		{"too long", strings.Repeat("a", 101), true},
		{"only whitespace", "   ", true},
		{"empty", "", true},
		{"control character", "bad\x00name", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateName(tc.input)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
		})
	}
}

func TestPricePrecision(t *testing.T) {
	valid := []float64{0.01, 1, 19.99, 1299.5, 100000}
	for _, v := range valid {
		if !hasTwoDecimalPrecision(v) {
			t.Fatalf("expected %v to be accepted", v)
		}
	}
	invalid := []float64{9.999, 0.001, 123.456}
	for _, v := range invalid {
		if hasTwoDecimalPrecision(v) {
			t.Fatalf("expected %v to be rejected", v)
		}
	}
}

func TestValidateProduct(t *testing.T) {
	base := Product{Name: "Widget", Price: 10, StockQuantity: 1, Discount: 5}
	if err := validate(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := base
	bad.Discount = -1
	if err := validate(bad); err == nil {
		t.Fatal("expected discount error")
	}

	bad = base
	bad.StockQuantity = -1
	if err := validate(bad); err == nil {
		t.Fatal("expected stock error")
	}
}
