package supplies

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity принимает только конечное число строго больше нуля.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: %w", raw, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("quantity must be > 0, got %s", v)
	}
	if !IsFinite(v) {
		return decimal.Zero, fmt.Errorf("quantity %q is out of range", raw)
	}
	return v, nil
}

// IsFinite: значение уходит в бэкенд как float64, поэтому оно должно в него помещаться.
func IsFinite(v decimal.Decimal) bool {
	f := v.InexactFloat64()
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// ValidateQuantity решает, можно ли отправлять операцию: до запроса, без ошибок наружу.
func ValidateQuantity(raw string) bool {
	_, err := ParseQuantity(raw)
	return err == nil
}
