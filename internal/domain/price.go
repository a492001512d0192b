package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Price is a non-negative fixed-point decimal with two fractional digits,
// stored as integer cents. It marshals to a JSON string like "12.50" so
// clients never see float rounding artifacts.
type Price struct {
	cents int64
}

// PriceFromCents builds a Price from an integer cent count.
func PriceFromCents(cents int64) Price {
	return Price{cents: cents}
}

// ParsePrice parses a decimal string like "5", "5.2", or "5.25".
// More than two fractional digits, a negative value, or any non-numeric
// input is an error.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, fmt.Errorf("price is empty")
	}
	if strings.HasPrefix(s, "-") {
		return Price{}, fmt.Errorf("price cannot be negative: %q", s)
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		return Price{}, fmt.Errorf("invalid price: %q", s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price: %q", s)
	}

	var cents int64
	if hasFrac {
		if frac == "" || len(frac) > 2 {
			return Price{}, fmt.Errorf("price must have at most two decimal places: %q", s)
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Price{}, fmt.Errorf("invalid price: %q", s)
		}
		if len(frac) == 1 {
			f *= 10
		}
		cents = f
	}

	return Price{cents: units*100 + cents}, nil
}

// Cents returns the price as integer cents.
func (p Price) Cents() int64 {
	return p.cents
}

// String formats the price with exactly two decimal places.
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", p.cents/100, p.cents%100)
}

// MarshalJSON encodes the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a decimal string or a bare JSON number.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
