package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

// Колонки выгрузки. Импорт читает тот же формат по именам заголовков.
const (
	ColSupplyID  = "id_supply"
	ColVariantID = "id_supply_variant"
	ColColorID   = "id_supply_color"
	ColStock     = "stock"
)

var header = []interface{}{
	ColSupplyID,
	ColVariantID,
	ColColorID,
	"description",
	"color",
	"type",
	"category",
	"uom",
	ColStock,
	"status",
}

// FileName: имя выгрузки с отметкой времени.
func FileName(now time.Time) string {
	return fmt.Sprintf("supplies_%s.xlsx", now.Format("20060102_150405"))
}

// SuppliesWorkbook собирает xlsx: строка на вариант, остаток числом либо "Sin stock".
func SuppliesWorkbook(list []supplies.Supply) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, s := range list {
		var variantID int64
		if s.Stock != nil {
			variantID = s.Stock.ID
		}
		var stock interface{} = supplies.NoStockLabel
		if v, ok := supplies.StockValue(s.Stock); ok {
			stock = v.InexactFloat64()
		}
		excelRow := []interface{}{
			s.ID,
			variantID,
			s.ColorID,
			s.Description,
			s.Color.Name,
			s.Type.Name,
			s.Type.Category.Name,
			s.Unit.Code,
			stock,
			string(supplies.Status(s.Stock)),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "D", "D", 40)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
