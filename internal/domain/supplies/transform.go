package supplies

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderCategoryID подставляется везде: список бэкенда не отдаёт id категории.
const PlaceholderCategoryID = 1

// UnitCode: первые три символа описания единицы в верхнем регистре.
// Код не уникален ("Metro" и "Metros" дают "MET").
func UnitCode(description string) string {
	r := []rune(description)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

func formatQty(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func supplyType(typeID int64, typeName, categoryName string) Type {
	return Type{
		ID:         typeID,
		Name:       typeName,
		CategoryID: PlaceholderCategoryID,
		Category: Category{
			ID:     PlaceholderCategoryID,
			Name:   categoryName,
			Active: true,
		},
	}
}

// FromVariants разворачивает материал с вариантами в строки по одному на цвет, порядок сохраняется.
// Stock.ID берётся из варианта: по нему списываем/приходуем конкретный цвет.
func FromVariants(b BackendSupplyWithVariants) []Supply {
	out := make([]Supply, 0, len(b.Variants))
	for _, v := range b.Variants {
		out = append(out, Supply{
			ID:             b.ID,
			Description:    b.Description + " - " + v.ColorName,
			Active:         b.Active,
			ColorID:        v.ColorID,
			TypeID:         b.TypeID,
			MeasuringUoMID: b.MeasuringUoMID,
			Color:          Color{ID: v.ColorID, Name: v.ColorName},
			Type:           supplyType(b.TypeID, b.TypeName, b.CategoryName),
			Unit: UnitOfMeasure{
				ID:          b.MeasuringUoMID,
				Code:        UnitCode(b.UoMDescription),
				Description: b.UoMDescription,
			},
			Stock: &StockInfo{ID: v.ID, Quantity: formatQty(v.StockActual)},
		})
	}
	return out
}

// Flatten: FromVariants по всему списку.
func Flatten(list []BackendSupplyWithVariants) []Supply {
	out := make([]Supply, 0, len(list))
	for _, b := range list {
		out = append(out, FromVariants(b)...)
	}
	return out
}

// FromBackend переводит плоскую строку (один цвет). Здесь Stock.ID = id материала.
func FromBackend(b BackendSupply) Supply {
	return Supply{
		ID:             b.ID,
		Description:    b.Description,
		Active:         b.Active,
		ColorID:        b.ColorID,
		TypeID:         b.TypeID,
		MeasuringUoMID: b.MeasuringUoMID,
		Color:          Color{ID: b.ColorID, Name: b.ColorName},
		Type:           supplyType(b.TypeID, b.TypeName, b.CategoryName),
		Unit: UnitOfMeasure{
			ID:          b.MeasuringUoMID,
			Code:        UnitCode(b.UoMDescription),
			Description: b.UoMDescription,
		},
		Stock: &StockInfo{ID: b.ID, Quantity: formatQty(b.StockActual)},
	}
}
