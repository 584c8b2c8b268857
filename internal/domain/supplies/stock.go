package supplies

import (
	"strings"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StatusNoStock   StockStatus = "no-stock"
	StatusLowStock  StockStatus = "low-stock"
	StatusGoodStock StockStatus = "good-stock"
)

// NoStockLabel показывается вместо числа, когда остатка нет вообще (не "0.00").
const NoStockLabel = "Sin stock"

// LowStockThreshold: граница между «мало» и «достаточно», в единицах материала.
const LowStockThreshold = 10

var lowStockThreshold = decimal.NewFromInt(LowStockThreshold)

// StockValue возвращает остаток или false, если записи нет или строка не число.
// Отсутствие и ноль, разные состояния.
func StockValue(s *StockInfo) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	raw := strings.TrimSpace(s.Quantity)
	if raw == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

func Status(s *StockInfo) StockStatus {
	v, ok := StockValue(s)
	switch {
	case !ok || !v.IsPositive():
		// отрицательный остаток тоже «нет», иначе разойдёмся с HasStock
		return StatusNoStock
	case v.LessThan(lowStockThreshold):
		return StatusLowStock
	default:
		return StatusGoodStock
	}
}

func HasStock(s *StockInfo) bool {
	v, ok := StockValue(s)
	return ok && v.IsPositive()
}

func HasLowStock(s *StockInfo) bool {
	v, ok := StockValue(s)
	return ok && v.IsPositive() && v.LessThan(lowStockThreshold)
}

// FormatStock: два знака после точки либо NoStockLabel.
func FormatStock(s *StockInfo) string {
	v, ok := StockValue(s)
	if !ok {
		return NoStockLabel
	}
	return v.StringFixed(2)
}
