package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/supply-bot/internal/dialog"
	"github.com/Spok95/supply-bot/internal/domain/journal"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/inventory"
	"github.com/Spok95/supply-bot/internal/report"
)

const importNote = "inventario"

// exportExcel выгружает текущий отфильтрованный список чата.
func (b *Bot) exportExcel(ctx context.Context, chatID int64) {
	st := b.store(ctx, chatID).Snapshot()
	if st.Error != "" && len(st.Supplies) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "❌ "+st.Error))
		return
	}

	data, err := report.SuppliesWorkbook(st.Filtered)
	if err != nil {
		b.log.Error("build workbook failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла"))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  report.FileName(time.Now()),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf(
		"Остатки: %d позиций.\nЧтобы провести инвентаризацию, исправьте колонку stock и загрузите файл через «%s».",
		len(st.Filtered), btnImport,
	)
	b.send(doc)
}

func (b *Bot) askImportFile(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateInvImportFile, dialog.Payload{})
	m := tgbotapi.NewMessage(chatID,
		"Отправьте Excel (.xlsx) в формате выгрузки. Остаток в колонке stock станет фактическим: разница будет оприходована или списана.")
	m.ReplyMarkup = navKeyboard(false, true)
	b.send(m)
}

// importResult: итог применения инвентаризации.
type importResult struct {
	Added      int
	Subtracted int
	Unchanged  int
	Unknown    []int
	Failed     []string
}

func (r importResult) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Инвентаризация применена.\nПриход: %d\nСписание: %d\nБез изменений: %d",
		r.Added, r.Subtracted, r.Unchanged))
	if len(r.Unknown) > 0 {
		lines := make([]string, 0, len(r.Unknown))
		for _, l := range r.Unknown {
			lines = append(lines, fmt.Sprint(l))
		}
		sb.WriteString("\nНе найдены на складе (строки): " + strings.Join(lines, ", "))
	}
	if len(r.Failed) > 0 {
		sb.WriteString("\nОшибки:\n— " + strings.Join(r.Failed, "\n— "))
	}
	return sb.String()
}

// handleImportExcel подгоняет остатки под файл: больше текущего, приход, меньше, списание.
func (b *Bot) handleImportExcel(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	if !strings.EqualFold(filepath.Ext(doc.FileName), ".xlsx") {
		b.send(tgbotapi.NewMessage(chatID, "Нужен файл .xlsx"))
		return
	}
	data, err := b.downloadTelegramFile(doc.FileID)
	if err != nil {
		b.log.Error("download import file failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Не удалось скачать файл, попробуйте ещё раз."))
		return
	}

	rows, err := report.ParseStockSheet(data)
	switch {
	case errors.Is(err, report.ErrNoRows):
		b.send(tgbotapi.NewMessage(chatID, "Файл не содержит данных (нет строк с остатками)."))
		return
	case errors.Is(err, report.ErrMissingColumn), errors.Is(err, report.ErrDuplicateRow):
		b.send(tgbotapi.NewMessage(chatID, "Некорректный формат файла: "+err.Error()))
		return
	case err != nil:
		b.send(tgbotapi.NewMessage(chatID, "Не удалось прочитать Excel-файл: "+err.Error()))
		return
	}

	store := b.store(ctx, chatID)
	if err := store.Refresh(ctx); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Не удалось получить текущие остатки: "+err.Error()))
		return
	}
	ops, unknown := report.Reconcile(rows, store.Snapshot().Supplies)

	res := importResult{Unchanged: len(rows) - len(ops) - len(unknown)}
	for _, u := range unknown {
		res.Unknown = append(res.Unknown, u.Line)
	}
	for _, op := range ops {
		body := op.Operation(importNote)
		entry := journal.Entry{
			ChatID: chatID, SupplyID: op.SupplyID, ColorID: op.ColorID,
			Qty: body.Quantity, Note: importNote, Source: journal.SourceImport,
		}
		var err error
		if op.Action == supplies.MoveSubtract {
			entry.Type = journal.MoveSubtract
			err = b.backend.SubtractVariantStock(ctx, op.SupplyID, body)
		} else {
			entry.Type = journal.MoveAdd
			err = b.backend.AddVariantStock(ctx, op.SupplyID, body)
		}
		if err != nil {
			entry.Error = err.Error()
			res.Failed = append(res.Failed, fmt.Sprintf("строка %d (%s): %s", op.Line, op.Description, err.Error()))
		} else if op.Action == supplies.MoveSubtract {
			res.Subtracted++
		} else {
			res.Added++
		}
		b.record(ctx, entry)
	}

	// остатки поменялись у всех, перечитываем каждый открытый склад
	b.stores.Each(func(_ int64, st *inventory.Store) {
		_ = st.Refresh(ctx)
	})

	_ = b.states.Reset(ctx, chatID)
	b.send(tgbotapi.NewMessage(chatID, res.String()))
	b.log.Info("stock sheet imported", "chat_id", chatID,
		"added", res.Added, "subtracted", res.Subtracted, "failed", len(res.Failed), "unknown", len(res.Unknown))
}
