package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/inventory"
)

// Бейдж остатка
func stockBadge(s *supplies.StockInfo) string {
	switch supplies.Status(s) {
	case supplies.StatusGoodStock:
		return "🟢"
	case supplies.StatusLowStock:
		return "⚠️"
	default:
		return "🚫"
	}
}

func unitLabel(s supplies.Supply) string {
	if s.Unit.Code != "" {
		return s.Unit.Code
	}
	return s.Unit.Description
}

// stockLine: остаток с единицей; "Sin stock" без единицы.
func stockLine(s supplies.Supply) string {
	if _, ok := supplies.StockValue(s.Stock); !ok {
		return supplies.NoStockLabel
	}
	return fmt.Sprintf("%s %s", supplies.FormatStock(s.Stock), unitLabel(s))
}

// listButtonLabel: подпись кнопки в списке; Telegram режет длинные, держим коротко.
func listButtonLabel(s supplies.Supply) string {
	name := s.Description
	if r := []rune(name); len(r) > 40 {
		name = string(r[:39]) + "…"
	}
	return fmt.Sprintf("%s %s · %s", stockBadge(s.Stock), name, stockLine(s))
}

// page возвращает границы страницы и число страниц; номер страницы приводится в допустимые пределы.
func page(total, current, size int) (from, to, cur, pages int) {
	if size <= 0 {
		size = 1
	}
	pages = (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	cur = current
	if cur < 0 {
		cur = 0
	}
	if cur >= pages {
		cur = pages - 1
	}
	from = cur * size
	to = from + size
	if to > total {
		to = total
	}
	if from > total {
		from = total
	}
	return from, to, cur, pages
}

// feedbackText: строка сообщения Store (ошибка важнее успеха).
func feedbackText(st inventory.State) string {
	switch {
	case st.Error != "":
		return "❌ " + st.Error
	case st.SuccessMessage != "":
		return "✅ " + st.SuccessMessage
	}
	return ""
}

func listHeader(st inventory.State, cur, pages int) string {
	var sb strings.Builder
	sb.WriteString("📦 Склад материалов")
	if st.Loading {
		sb.WriteString(" (обновляется…)")
	}
	sb.WriteString("\n")
	if st.SearchTerm != "" {
		sb.WriteString(fmt.Sprintf("Поиск: «%s»\n", st.SearchTerm))
	}
	if st.CategoryFilter != "" && st.CategoryFilter != supplies.AllCategories {
		sb.WriteString(fmt.Sprintf("Категория: %s\n", st.CategoryFilter))
	}
	sb.WriteString(fmt.Sprintf("Найдено: %d из %d · стр. %d/%d", len(st.Filtered), len(st.Supplies), cur+1, pages))
	if fb := feedbackText(st); fb != "" {
		sb.WriteString("\n\n" + fb)
	}
	if len(st.Filtered) == 0 {
		sb.WriteString("\n\nНичего не найдено.")
	}
	return sb.String()
}

func itemCard(s supplies.Supply) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", stockBadge(s.Stock), s.Description))
	sb.WriteString(fmt.Sprintf("ID: %d · цвет: %s (ID %d)\n", s.ID, s.Color.Name, s.ColorID))
	sb.WriteString(fmt.Sprintf("Тип: %s\nКатегория: %s\n", s.Type.Name, s.Type.Category.Name))
	sb.WriteString(fmt.Sprintf("Остаток: %s", stockLine(s)))
	if !s.Active {
		sb.WriteString("\n(материал неактивен)")
	}
	return sb.String()
}

func summaryText(sum supplies.Summary) string {
	return fmt.Sprintf(
		"📊 Сводка по складу\nВсего позиций: %d\nАктивных: %d\nВ наличии: %d\nМало (< %d): %d\nНет в наличии: %d",
		sum.Total, sum.Active, sum.WithStock, supplies.LowStockThreshold, sum.LowStock, sum.OutOfStock,
	)
}

func lowStockText(list []supplies.Supply, threshold float64) string {
	if len(list) == 0 {
		return fmt.Sprintf("Материалов с остатком ниже %s нет.", strconv.FormatFloat(threshold, 'f', -1, 64))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚠️ Остаток ниже %s:\n", strconv.FormatFloat(threshold, 'f', -1, 64)))
	for _, s := range list {
		sb.WriteString(fmt.Sprintf("— %s: %s\n", s.Description, stockLine(s)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func movementsText(supplyID int64, p backend.MovementsPage) string {
	if len(p.Movements) == 0 {
		return fmt.Sprintf("По материалу %d движений нет.", supplyID)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🧾 Движения по материалу %d", supplyID))
	if p.Total > len(p.Movements) {
		sb.WriteString(fmt.Sprintf(" (последние %d из %d)", len(p.Movements), p.Total))
	}
	sb.WriteString(":\n")
	for _, m := range p.Movements {
		sign := "+"
		if m.MovementType == supplies.MoveSubtract {
			sign = "−"
		}
		line := fmt.Sprintf("%s %s%s", m.CreatedAt.Format("02.01.2006 15:04"), sign, strconv.FormatFloat(m.Quantity, 'f', -1, 64))
		if m.Notes != "" {
			line += " · " + m.Notes
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// lowStockNotice: текст админу после списания, пустой если остаток в норме.
func lowStockNotice(s supplies.Supply) string {
	switch supplies.Status(s.Stock) {
	case supplies.StatusNoStock:
		return fmt.Sprintf("⚠️ Материалы:\n— %s\nзакончились.", s.Description)
	case supplies.StatusLowStock:
		return fmt.Sprintf("⚠️ Материалы:\n— %s — %s заканчиваются…", s.Description, stockLine(s))
	}
	return ""
}

// normalizeQty: запятая как десятичный разделитель.
func normalizeQty(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
}

// variantRef: ссылка на строку списка в callback: id материала и цвета.
type variantRef struct {
	SupplyID int64
	ColorID  int64
}

func (r variantRef) String() string {
	return fmt.Sprintf("%d:%d", r.SupplyID, r.ColorID)
}

// parseRef разбирает "<prefix><supply>:<color>".
func parseRef(data, prefix string) (variantRef, bool) {
	rest, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return variantRef{}, false
	}
	a, c, ok := strings.Cut(rest, ":")
	if !ok {
		return variantRef{}, false
	}
	sid, err1 := strconv.ParseInt(a, 10, 64)
	cid, err2 := strconv.ParseInt(c, 10, 64)
	if err1 != nil || err2 != nil {
		return variantRef{}, false
	}
	return variantRef{SupplyID: sid, ColorID: cid}, true
}

func findVariant(list []supplies.Supply, ref variantRef) (supplies.Supply, bool) {
	for _, s := range list {
		if s.ID == ref.SupplyID && s.ColorID == ref.ColorID {
			return s, true
		}
	}
	return supplies.Supply{}, false
}
