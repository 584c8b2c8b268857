package report

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

var (
	ErrNoRows        = errors.New("sheet has no data rows")
	ErrMissingColumn = errors.New("sheet is missing a required column")
	ErrDuplicateRow  = errors.New("variant listed more than once")
)

// SheetRow: фактический остаток варианта из инвентаризационного файла.
type SheetRow struct {
	Line     int // номер строки в файле, для сообщений
	SupplyID int64
	ColorID  int64
	Qty      decimal.Decimal
}

// ParseStockSheet читает активный лист в формате SuppliesWorkbook.
// Строки без id или с пустым остатком (или "Sin stock") пропускаются.
// Повтор пары supply_id/color_id даёт ErrDuplicateRow с номерами обеих строк.
func ParseStockSheet(data []byte) ([]SheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{ColSupplyID, ColColorID, ColStock} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	type key struct{ supply, color int64 }
	seen := map[key]int{}

	var out []SheetRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1

		idStr := cell(row, ColSupplyID)
		qtyStr := cell(row, ColStock)
		if idStr == "" || qtyStr == "" || strings.EqualFold(qtyStr, supplies.NoStockLabel) {
			continue
		}

		supplyID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q", line, ColSupplyID, idStr)
		}
		colorID, err := strconv.ParseInt(cell(row, ColColorID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q", line, ColColorID, cell(row, ColColorID))
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(qtyStr, ",", "."))
		if err != nil || qty.IsNegative() || !supplies.IsFinite(qty) {
			return nil, fmt.Errorf("line %d: invalid stock %q", line, qtyStr)
		}
		if first, dup := seen[key{supplyID, colorID}]; dup {
			return nil, fmt.Errorf("%w: line %d repeats line %d", ErrDuplicateRow, line, first)
		}
		seen[key{supplyID, colorID}] = line

		out = append(out, SheetRow{Line: line, SupplyID: supplyID, ColorID: colorID, Qty: qty})
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

// Adjustment: одна операция, приводящая вариант к остатку из файла.
type Adjustment struct {
	Line        int
	SupplyID    int64
	ColorID     int64
	Description string
	Action      supplies.MoveType
	Qty         decimal.Decimal
}

// Operation: тело запроса к бэкенду.
func (a Adjustment) Operation(notes string) supplies.VariantQuantityOperation {
	return supplies.VariantQuantityOperation{
		ColorID:  a.ColorID,
		Quantity: a.Qty.InexactFloat64(),
		Notes:    notes,
	}
}

// Reconcile сравнивает файл с текущим списком: больше, чем есть, значит приход разницы,
// меньше, значит списание. Отсутствующий остаток считается нулём.
// Строки, которых нет в текущем списке, возвращаются в unknown.
// На один вариант приходится не больше одной операции: при повторе действует последняя строка.
func Reconcile(rows []SheetRow, current []supplies.Supply) (ops []Adjustment, unknown []SheetRow) {
	type key struct{ supply, color int64 }
	byKey := make(map[key]supplies.Supply, len(current))
	for _, s := range current {
		byKey[key{s.ID, s.ColorID}] = s
	}
	last := make(map[key]int, len(rows))
	for i, r := range rows {
		last[key{r.SupplyID, r.ColorID}] = i
	}

	for i, r := range rows {
		if last[key{r.SupplyID, r.ColorID}] != i {
			continue
		}
		s, ok := byKey[key{r.SupplyID, r.ColorID}]
		if !ok {
			unknown = append(unknown, r)
			continue
		}
		have, _ := supplies.StockValue(s.Stock)
		delta := r.Qty.Sub(have)
		if delta.IsZero() {
			continue
		}
		adj := Adjustment{
			Line:        r.Line,
			SupplyID:    r.SupplyID,
			ColorID:     r.ColorID,
			Description: s.Description,
			Action:      supplies.MoveAdd,
			Qty:         delta,
		}
		if delta.IsNegative() {
			adj.Action = supplies.MoveSubtract
			adj.Qty = delta.Neg()
		}
		ops = append(ops, adj)
	}
	return ops, unknown
}
