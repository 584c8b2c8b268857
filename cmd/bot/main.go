package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/bot"
	"github.com/Spok95/supply-bot/internal/config"
	"github.com/Spok95/supply-bot/internal/dialog"
	"github.com/Spok95/supply-bot/internal/domain/journal"
	"github.com/Spok95/supply-bot/internal/infra/db"
	httpx "github.com/Spok95/supply-bot/internal/infra/http"
	"github.com/Spok95/supply-bot/internal/infra/logger"
	"github.com/Spok95/supply-bot/internal/infra/metrics"
	"github.com/Spok95/supply-bot/internal/inventory"
)

func runMigrations(dsn string, log *slog.Logger) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return err
	}
	v, err := goose.GetDBVersion(sqlDB)
	if err == nil {
		log.Debug("schema version", "version", v)
	}
	return nil
}

func main() {
	cfgPath := flag.String("config", "config/example.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)
	log.Info("starting", "env", cfg.App.Env, "backend", cfg.Backend.BaseURL)

	if err := runMigrations(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log, m)
	stores := inventory.NewRegistry(func() *inventory.Store {
		return inventory.New(client, log, m, cfg.Inventory.FeedbackTTL)
	})
	defer stores.Close()

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, client, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "username", api.Self.UserName)

	b := bot.New(api, log,
		dialog.NewRepo(pool), journal.NewRepo(pool),
		client, stores,
		cfg.Telegram.AdminChatID, cfg.Inventory.PageSize, cfg.Inventory.LowStockThreshold)

	if err := b.Run(ctx, cfg.Telegram.PollTimeout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
