package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/supply-bot/internal/domain/supplies"
)

// Тексты кнопок нижней панели
const (
	btnInventory = "Склад"
	btnSummary   = "Сводка"
	btnLowStock  = "Заканчиваются"
	btnExport    = "Выгрузить Excel"
	btnImport    = "Загрузить инвентаризацию"
)

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Отменить", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnInventory)},
			{tgbotapi.NewKeyboardButton(btnSummary), tgbotapi.NewKeyboardButton(btnLowStock)},
			{tgbotapi.NewKeyboardButton(btnExport), tgbotapi.NewKeyboardButton(btnImport)},
		},
	}
}

// listKeyboard: строки текущей страницы, листание и фильтры.
func listKeyboard(rows []supplies.Supply, cur, pages int) tgbotapi.InlineKeyboardMarkup {
	kb := [][]tgbotapi.InlineKeyboardButton{}
	for _, s := range rows {
		ref := variantRef{SupplyID: s.ID, ColorID: s.ColorID}
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(listButtonLabel(s), "inv:item:"+ref.String()),
		))
	}

	if pages > 1 {
		pager := []tgbotapi.InlineKeyboardButton{}
		if cur > 0 {
			pager = append(pager, tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("inv:page:%d", cur-1)))
		}
		pager = append(pager, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", cur+1, pages), "inv:noop"))
		if cur < pages-1 {
			pager = append(pager, tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("inv:page:%d", cur+1)))
		}
		kb = append(kb, pager)
	}

	kb = append(kb,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Поиск", "inv:search"),
			tgbotapi.NewInlineKeyboardButtonData("🗂 Категория", "inv:cat"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Сбросить", "inv:clear"),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "inv:refresh"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

// categoryKeyboard: категории по индексу: имя может не влезть в 64 байта callback.
func categoryKeyboard(categories []string, current string) tgbotapi.InlineKeyboardMarkup {
	all := "Все категории"
	if current == supplies.AllCategories {
		all = "✔️ " + all
	}
	kb := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(all, "inv:catall")),
	}
	for i, c := range categories {
		label := c
		if label == "" {
			label = "(без категории)"
		}
		if c == current {
			label = "✔️ " + label
		}
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("inv:catset:%d", i)),
		))
	}
	kb = append(kb, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

func itemKeyboard(ref variantRef) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Приход", "inv:add:"+ref.String()),
			tgbotapi.NewInlineKeyboardButtonData("➖ Списание", "inv:sub:"+ref.String()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧾 Движения", fmt.Sprintf("inv:mov:%d", ref.SupplyID)),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func notesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Без заметки", "inv:notes:skip"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}
