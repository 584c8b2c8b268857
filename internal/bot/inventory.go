package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/supply-bot/internal/dialog"
	"github.com/Spok95/supply-bot/internal/domain/journal"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/inventory"
)

// showList: страница отфильтрованного списка.
func (b *Bot) showList(ctx context.Context, chatID int64, editMsgID *int, pageNum int) {
	st := b.store(ctx, chatID).Snapshot()
	from, to, cur, pages := page(len(st.Filtered), pageNum, b.pageSize)

	text := listHeader(st, cur, pages)
	kb := listKeyboard(st.Filtered[from:to], cur, pages)
	b.sendOrEdit(chatID, editMsgID, text, kb)

	_ = b.states.Set(ctx, chatID, dialog.StateInvList, dialog.Payload{"page": cur})
}

// listPage: страница, на которой оператор был до карточки.
func listPage(p dialog.Payload) int {
	n, _ := dialog.GetInt64(p, "page")
	return int(n)
}

func (b *Bot) showItem(ctx context.Context, chatID int64, editMsgID *int, ref variantRef, pageNum int) {
	st := b.store(ctx, chatID).Snapshot()
	s, ok := findVariant(st.Supplies, ref)
	if !ok {
		text := "Материал не найден (список мог обновиться)."
		if editMsgID != nil {
			b.editTextAndClear(chatID, *editMsgID, text)
		} else {
			b.send(tgbotapi.NewMessage(chatID, text))
		}
		return
	}

	b.sendOrEdit(chatID, editMsgID, itemCard(s), itemKeyboard(ref))
	_ = b.states.Set(ctx, chatID, dialog.StateInvItem, dialog.Payload{
		"supply_id": ref.SupplyID,
		"color_id":  ref.ColorID,
		"page":      pageNum,
	})
}

func (b *Bot) showCategoryPicker(ctx context.Context, chatID int64, editMsgID int) {
	st := b.store(ctx, chatID).Snapshot()
	if len(st.Categories) == 0 {
		b.editTextWithNav(chatID, editMsgID, "Категорий пока нет.")
		return
	}
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, editMsgID, "Выберите категорию:",
		categoryKeyboard(st.Categories, st.CategoryFilter)))
}

// startQty: запрос количества для прихода или списания.
func (b *Bot) startQty(ctx context.Context, chatID int64, editMsgID int, ref variantRef, action inventory.Action, pageNum int) {
	st := b.store(ctx, chatID).Snapshot()
	s, ok := findVariant(st.Supplies, ref)
	if !ok {
		b.editTextAndClear(chatID, editMsgID, "Материал не найден (список мог обновиться).")
		return
	}

	state := dialog.StateInvAddQty
	verb := "прихода"
	if action == inventory.ActionSubtract {
		state = dialog.StateInvSubQty
		verb = "списания"
	}
	_ = b.states.Set(ctx, chatID, state, dialog.Payload{
		"supply_id": ref.SupplyID,
		"color_id":  ref.ColorID,
		"desc":      s.Description,
		"action":    string(action),
		"page":      pageNum,
	})
	b.editTextWithNav(chatID, editMsgID, fmt.Sprintf(
		"%s\nОстаток: %s\n\nВведите количество для %s (например 2.5):", s.Description, stockLine(s), verb))
}

// onQtyEntered проверяет количество и переходит к заметке; неверный ввод, повторный запрос.
func (b *Bot) onQtyEntered(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	raw := normalizeQty(text)
	if !supplies.ValidateQuantity(raw) {
		m := tgbotapi.NewMessage(chatID, "Некорректное число. Введите положительное значение.")
		m.ReplyMarkup = navKeyboard(true, true)
		b.send(m)
		return
	}
	st.Payload["qty"] = raw
	_ = b.states.Set(ctx, chatID, dialog.StateInvNotes, st.Payload)

	m := tgbotapi.NewMessage(chatID, "Заметка к операции? Отправьте текст или нажмите «Без заметки».")
	m.ReplyMarkup = notesKeyboard()
	b.send(m)
}

// submitAdjustment отправляет операцию через Store. При ошибке форма остаётся открытой:
// оператор видит текст ошибки и может ввести количество заново.
func (b *Bot) submitAdjustment(ctx context.Context, chatID int64, st *dialog.Item, notes string) {
	supplyID, _ := dialog.GetInt64(st.Payload, "supply_id")
	colorID, _ := dialog.GetInt64(st.Payload, "color_id")
	action, _ := dialog.GetString(st.Payload, "action")
	raw, _ := dialog.GetString(st.Payload, "qty")
	ref := variantRef{SupplyID: supplyID, ColorID: colorID}

	qty, err := supplies.ParseQuantity(raw)
	if err != nil || supplyID == 0 {
		_ = b.states.Reset(ctx, chatID)
		b.send(tgbotapi.NewMessage(chatID, "Операция устарела, начните заново: /inventory"))
		return
	}

	op := supplies.VariantQuantityOperation{ColorID: colorID, Quantity: qty.InexactFloat64(), Notes: notes}
	store := b.store(ctx, chatID)

	entry := journal.Entry{
		ChatID: chatID, SupplyID: supplyID, ColorID: colorID,
		Qty: op.Quantity, Note: notes, Source: journal.SourceBot,
	}
	qtyState := dialog.StateInvAddQty
	if inventory.Action(action) == inventory.ActionSubtract {
		entry.Type = journal.MoveSubtract
		qtyState = dialog.StateInvSubQty
		err = store.SubtractQuantity(ctx, supplyID, op)
	} else {
		entry.Type = journal.MoveAdd
		err = store.AddQuantity(ctx, supplyID, op)
	}
	if err != nil {
		entry.Error = err.Error()
	}
	b.record(ctx, entry)

	if err != nil {
		delete(st.Payload, "qty")
		_ = b.states.Set(ctx, chatID, qtyState, st.Payload)
		m := tgbotapi.NewMessage(chatID, fmt.Sprintf("❌ %s\n\nВведите количество ещё раз или отмените операцию.", err.Error()))
		m.ReplyMarkup = navKeyboard(true, true)
		b.send(m)
		return
	}

	snap := store.Snapshot()
	text := "✅ " + snap.SuccessMessage
	if snap.SuccessMessage == "" {
		// сообщение могло уже истечь, если перечитывание шло долго
		text = "✅ Готово"
	}
	if snap.Error != "" {
		text += "\n❌ " + snap.Error
	}
	b.send(tgbotapi.NewMessage(chatID, text))

	b.showItem(ctx, chatID, nil, ref, listPage(st.Payload))

	if entry.Type == journal.MoveSubtract {
		if s, ok := findVariant(snap.Supplies, ref); ok {
			b.notifyLowStock(s)
		}
	}
}

// notifyLowStock: сигнал в админ-чат, если после списания осталось мало или ничего.
func (b *Bot) notifyLowStock(s supplies.Supply) {
	if b.adminChat == 0 {
		return
	}
	if text := lowStockNotice(s); text != "" {
		b.send(tgbotapi.NewMessage(b.adminChat, text))
	}
}

func (b *Bot) showSummary(ctx context.Context, chatID int64) {
	st := b.store(ctx, chatID).Snapshot()
	if st.Error != "" && len(st.Supplies) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "❌ "+st.Error))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, summaryText(supplies.Summarize(st.Supplies))))
}

func (b *Bot) showLowStock(ctx context.Context, chatID int64) {
	list, err := b.backend.GetLowStock(ctx, b.lowStock)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ "+err.Error()))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, lowStockText(list, b.lowStock)))
}

func (b *Bot) showMovements(ctx context.Context, chatID int64, supplyID int64) {
	p, err := b.backend.GetMovements(ctx, supplyID, 0, 0)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ "+err.Error()))
		return
	}
	b.send(tgbotapi.NewMessage(chatID, movementsText(supplyID, p)))
}

func (b *Bot) refresh(ctx context.Context, chatID int64) error {
	return b.store(ctx, chatID).Refresh(ctx)
}
