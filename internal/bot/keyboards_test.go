package bot

import (
	"strings"
	"testing"

	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

func callbacks(rows [][]string) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func TestListKeyboard(t *testing.T) {
	rows := []supplies.Supply{variant(1, 10, "Zipper - Negro", "3"), variant(2, 11, "Botón - Negro", "")}
	kb := listKeyboard(rows, 1, 3)

	var data [][]string
	for _, r := range kb.InlineKeyboard {
		var line []string
		for _, btn := range r {
			if btn.CallbackData != nil {
				line = append(line, *btn.CallbackData)
			}
		}
		data = append(data, line)
	}
	all := strings.Join(callbacks(data), " ")

	for _, want := range []string{"inv:item:1:10", "inv:item:2:11", "inv:page:0", "inv:page:2", "inv:search", "inv:cat", "nav:cancel"} {
		if !strings.Contains(all, want) {
			t.Errorf("Expected callback %q in %q", want, all)
		}
	}
	for _, d := range callbacks(data) {
		if len(d) > 64 {
			t.Errorf("Callback data %q exceeds Telegram limit", d)
		}
	}
}

func TestListKeyboard_SinglePageHasNoPager(t *testing.T) {
	kb := listKeyboard([]supplies.Supply{variant(1, 10, "Zipper", "3")}, 0, 1)
	for _, r := range kb.InlineKeyboard {
		for _, btn := range r {
			if btn.CallbackData != nil && strings.HasPrefix(*btn.CallbackData, "inv:page:") {
				t.Errorf("Expected no pager on a single page, got %q", *btn.CallbackData)
			}
		}
	}
}

func TestListButtonLabel_Truncates(t *testing.T) {
	long := strings.Repeat("a", 80)
	label := listButtonLabel(variant(1, 1, long, "20"))
	if !strings.Contains(label, "…") || strings.Contains(label, long) {
		t.Errorf("Expected truncated description, got %q", label)
	}
	if !strings.HasPrefix(label, "🟢") {
		t.Errorf("Expected status badge first, got %q", label)
	}
}

func TestCategoryKeyboard(t *testing.T) {
	kb := categoryKeyboard([]string{"Mercería", "Telas"}, "Telas")
	if got := kb.InlineKeyboard[0][0].Text; got != "Все категории" {
		t.Errorf("Expected unmarked 'all' button, got %q", got)
	}
	if got := kb.InlineKeyboard[2][0].Text; got != "✔️ Telas" {
		t.Errorf("Expected selected category marked, got %q", got)
	}
	if got := *kb.InlineKeyboard[1][0].CallbackData; got != "inv:catset:0" {
		t.Errorf("Expected index-based callback, got %q", got)
	}

	kb = categoryKeyboard([]string{"Telas"}, supplies.AllCategories)
	if got := kb.InlineKeyboard[0][0].Text; got != "✔️ Все категории" {
		t.Errorf("Expected 'all' marked, got %q", got)
	}
}

func TestItemKeyboard(t *testing.T) {
	kb := itemKeyboard(variantRef{SupplyID: 4, ColorID: 9})
	if got := *kb.InlineKeyboard[0][0].CallbackData; got != "inv:add:4:9" {
		t.Errorf("Expected add callback, got %q", got)
	}
	if got := *kb.InlineKeyboard[0][1].CallbackData; got != "inv:sub:4:9" {
		t.Errorf("Expected subtract callback, got %q", got)
	}
	if got := *kb.InlineKeyboard[1][0].CallbackData; got != "inv:mov:4" {
		t.Errorf("Expected movements callback, got %q", got)
	}
}

func TestImportResultString(t *testing.T) {
	r := importResult{Added: 2, Subtracted: 1, Unchanged: 5, Unknown: []int{7, 9}, Failed: []string{"строка 3 (Zipper): insufficient stock"}}
	got := r.String()
	for _, want := range []string{"Приход: 2", "Списание: 1", "Без изменений: 5", "строки): 7, 9", "insufficient stock"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}
