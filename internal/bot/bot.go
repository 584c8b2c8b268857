package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/dialog"
	"github.com/Spok95/supply-bot/internal/domain/journal"
	"github.com/Spok95/supply-bot/internal/domain/supplies"
	"github.com/Spok95/supply-bot/internal/inventory"
)

const defaultPageSize = 8

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	states    *dialog.Repo
	journal   *journal.Repo
	backend   *backend.Client
	stores    *inventory.Registry
	adminChat int64
	pageSize  int
	lowStock  float64
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	statesRepo *dialog.Repo, journalRepo *journal.Repo,
	client *backend.Client, stores *inventory.Registry,
	adminChatID int64, pageSize int, lowStockThreshold float64) *Bot {

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = supplies.LowStockThreshold
	}
	return &Bot{
		api: api, log: log, states: statesRepo, journal: journalRepo,
		backend: client, stores: stores,
		adminChat: adminChatID, pageSize: pageSize, lowStock: lowStockThreshold,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

// store: Store чата; новый сразу загружает список.
func (b *Bot) store(ctx context.Context, chatID int64) *inventory.Store {
	st, created := b.stores.Get(chatID)
	if created {
		_ = st.Refresh(ctx)
	}
	return st
}

// record пишет операцию в журнал; сбой журнала не мешает оператору.
func (b *Bot) record(ctx context.Context, e journal.Entry) {
	if b.journal == nil {
		return
	}
	if err := b.journal.Record(ctx, e); err != nil {
		b.log.Error("journal record failed", "chat_id", e.ChatID, "supply_id", e.SupplyID, "err", err)
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery.Message == nil {
		return
	}
	b.handleCallback(ctx, upd.CallbackQuery)
}
