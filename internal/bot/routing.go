package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/supply-bot/internal/dialog"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/inventory"
)

const helpText = "Команды:\n" +
	"/inventory — список материалов\n" +
	"/summary — сводка по складу\n" +
	"/lowstock — что заканчивается\n" +
	"/export — выгрузить остатки в Excel\n" +
	"/import — загрузить инвентаризацию\n" +
	"/movements <id> — движения по материалу\n" +
	"/refresh — перечитать список\n" +
	"Любой текст — поиск по названию, цвету, типу или категории."

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		_ = b.states.Reset(ctx, chatID)
		m := tgbotapi.NewMessage(chatID, "Привет! Это учёт материалов склада. Кнопки снизу, команды — /help.")
		m.ReplyMarkup = mainReplyKeyboard()
		b.send(m)
		return

	case "help":
		b.send(tgbotapi.NewMessage(chatID, helpText))
		return

	case "inventory":
		b.showList(ctx, chatID, nil, 0)
		return

	case "summary":
		b.showSummary(ctx, chatID)
		return

	case "lowstock":
		b.showLowStock(ctx, chatID)
		return

	case "export":
		b.exportExcel(ctx, chatID)
		return

	case "import":
		b.askImportFile(ctx, chatID)
		return

	case "movements":
		id, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
		if err != nil || id <= 0 {
			b.send(tgbotapi.NewMessage(chatID, "Укажите ID материала: /movements 12"))
			return
		}
		b.showMovements(ctx, chatID, id)
		return

	case "refresh":
		if err := b.refresh(ctx, chatID); err != nil {
			b.send(tgbotapi.NewMessage(chatID, "❌ "+err.Error()))
			return
		}
		b.showList(ctx, chatID, nil, 0)
		return

	default:
		b.send(tgbotapi.NewMessage(chatID, "Не знаю такую команду. Наберите /help"))
		return
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	// Нижняя панель
	switch msg.Text {
	case btnInventory:
		b.showList(ctx, chatID, nil, 0)
		return
	case btnSummary:
		b.showSummary(ctx, chatID)
		return
	case btnLowStock:
		b.showLowStock(ctx, chatID)
		return
	case btnExport:
		b.exportExcel(ctx, chatID)
		return
	case btnImport:
		b.askImportFile(ctx, chatID)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("dialog state read failed", "chat_id", chatID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка, попробуйте ещё раз."))
		return
	}

	switch st.State {
	case dialog.StateInvImportFile:
		if msg.Document == nil {
			b.send(tgbotapi.NewMessage(chatID, "Жду файл .xlsx или «Отменить»."))
			return
		}
		b.handleImportExcel(ctx, chatID, msg.Document)
		return

	case dialog.StateInvAddQty, dialog.StateInvSubQty:
		b.onQtyEntered(ctx, chatID, st, msg.Text)
		return

	case dialog.StateInvNotes:
		b.submitAdjustment(ctx, chatID, st, strings.TrimSpace(msg.Text))
		return
	}

	// всё остальное: поиск
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	b.store(ctx, chatID).SetSearchTerm(text)
	b.showList(ctx, chatID, nil, 0)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	fromChat := cb.Message.Chat.ID
	msgID := cb.Message.MessageID

	// Общая навигация
	if data == "nav:cancel" {
		_ = b.states.Reset(ctx, fromChat)
		b.editTextAndClear(fromChat, msgID, "Операция отменена.")
		_ = b.answerCallback(cb, "Отменено", false)
		return
	}
	if data == "nav:back" {
		st, err := b.states.Get(ctx, fromChat)
		if err != nil {
			_ = b.answerCallback(cb, "Ошибка", false)
			return
		}
		switch st.State {
		case dialog.StateInvAddQty, dialog.StateInvSubQty, dialog.StateInvNotes:
			// из ввода: назад в карточку
			sid, _ := dialog.GetInt64(st.Payload, "supply_id")
			cid, _ := dialog.GetInt64(st.Payload, "color_id")
			b.showItem(ctx, fromChat, &msgID, variantRef{SupplyID: sid, ColorID: cid}, listPage(st.Payload))
		default:
			// остальное (карточка, поиск, выбор категории): назад в список
			b.showList(ctx, fromChat, &msgID, listPage(st.Payload))
		}
		_ = b.answerCallback(cb, "Назад", false)
		return
	}

	switch {
	case data == "inv:noop":
		_ = b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, "inv:page:"):
		n, _ := strconv.Atoi(strings.TrimPrefix(data, "inv:page:"))
		b.showList(ctx, fromChat, &msgID, n)
		_ = b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, "inv:item:"):
		ref, ok := parseRef(data, "inv:item:")
		if !ok {
			_ = b.answerCallback(cb, "Некорректные данные", false)
			return
		}
		b.showItem(ctx, fromChat, &msgID, ref, b.currentPage(ctx, fromChat))
		_ = b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, "inv:add:"), strings.HasPrefix(data, "inv:sub:"):
		action, prefix := inventory.ActionAdd, "inv:add:"
		if strings.HasPrefix(data, "inv:sub:") {
			action, prefix = inventory.ActionSubtract, "inv:sub:"
		}
		ref, ok := parseRef(data, prefix)
		if !ok {
			_ = b.answerCallback(cb, "Некорректные данные", false)
			return
		}
		b.startQty(ctx, fromChat, msgID, ref, action, b.currentPage(ctx, fromChat))
		_ = b.answerCallback(cb, "", false)

	case data == "inv:notes:skip":
		st, err := b.states.Get(ctx, fromChat)
		if err != nil || st.State != dialog.StateInvNotes {
			_ = b.answerCallback(cb, "Операция устарела", true)
			return
		}
		b.editTextAndClear(fromChat, msgID, "Без заметки.")
		b.submitAdjustment(ctx, fromChat, st, "")
		_ = b.answerCallback(cb, "", false)

	case strings.HasPrefix(data, "inv:mov:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "inv:mov:"), 10, 64)
		if err != nil {
			_ = b.answerCallback(cb, "Некорректные данные", false)
			return
		}
		b.showMovements(ctx, fromChat, id)
		_ = b.answerCallback(cb, "", false)

	case data == "inv:search":
		_ = b.states.Set(ctx, fromChat, dialog.StateInvSearch, dialog.Payload{"page": b.currentPage(ctx, fromChat)})
		b.editTextWithNav(fromChat, msgID, "Введите строку поиска сообщением.")
		_ = b.answerCallback(cb, "", false)

	case data == "inv:cat":
		b.showCategoryPicker(ctx, fromChat, msgID)
		_ = b.answerCallback(cb, "", false)

	case data == "inv:catall":
		b.store(ctx, fromChat).SetCategoryFilter(supplies.AllCategories)
		b.showList(ctx, fromChat, &msgID, 0)
		_ = b.answerCallback(cb, "Все категории", false)

	case strings.HasPrefix(data, "inv:catset:"):
		i, err := strconv.Atoi(strings.TrimPrefix(data, "inv:catset:"))
		store := b.store(ctx, fromChat)
		cats := store.Snapshot().Categories
		if err != nil || i < 0 || i >= len(cats) {
			_ = b.answerCallback(cb, "Категории обновились, выберите ещё раз", true)
			b.showCategoryPicker(ctx, fromChat, msgID)
			return
		}
		store.SetCategoryFilter(cats[i])
		b.showList(ctx, fromChat, &msgID, 0)
		_ = b.answerCallback(cb, cats[i], false)

	case data == "inv:clear":
		store := b.store(ctx, fromChat)
		store.SetSearchTerm("")
		store.SetCategoryFilter(supplies.AllCategories)
		store.ClearMessages()
		b.showList(ctx, fromChat, &msgID, 0)
		_ = b.answerCallback(cb, "Фильтры сброшены", false)

	case data == "inv:refresh":
		err := b.refresh(ctx, fromChat)
		b.showList(ctx, fromChat, &msgID, b.currentPage(ctx, fromChat))
		if err != nil {
			_ = b.answerCallback(cb, err.Error(), true)
			return
		}
		_ = b.answerCallback(cb, "Обновлено", false)

	default:
		_ = b.answerCallback(cb, "Неизвестная команда", false)
	}
}

// currentPage: страница списка из сохранённого диалога.
func (b *Bot) currentPage(ctx context.Context, chatID int64) int {
	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		return 0
	}
	return listPage(st.Payload)
}
