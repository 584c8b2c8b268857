package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Spok95/supply-bot/internal/backend"
	"github.com/Spok95/supply-bot/internal/config"
	"github.com/Spok95/supply-bot/internal/domain/journal"
	"github.com/Spok95/supply-bot/internal/infra/db"
	"github.com/Spok95/supply-bot/internal/infra/logger"
)

// app: общее для всех команд: конфиг, клиент бэкенда, журнал (по флагу).
type app struct {
	cfgPath string
	baseURL string
	timeout time.Duration
	journal bool

	cfg    config.Config
	log    *slog.Logger
	client *backend.Client
	pool   *pgxpool.Pool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "supplyctl",
		Short:         "Operate the supplies inventory backend from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.pool != nil {
				a.pool.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML config file (env APP_* and .env are read either way)")
	pf.StringVar(&a.baseURL, "backend", "", "backend base URL, overrides backend.base_url")
	pf.DurationVar(&a.timeout, "timeout", 0, "request timeout, overrides backend.timeout")
	pf.BoolVar(&a.journal, "journal", false, "record stock adjustments in the Postgres journal")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.createCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.adjustCmd(actionAdd),
		a.adjustCmd(actionSubtract),
		a.lowStockCmd(),
		a.movementsCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.baseURL != "" {
		cfg.Backend.BaseURL = a.baseURL
	}
	if a.timeout > 0 {
		cfg.Backend.Timeout = a.timeout
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.App.Env)
	a.client = backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, a.log, nil)
	return nil
}

// record пишет операцию в журнал, если включён --journal. Пул открывается при первой записи.
func (a *app) record(ctx context.Context, e journal.Entry) error {
	if !a.journal {
		return nil
	}
	if a.pool == nil {
		pool, err := db.Connect(ctx, a.cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		a.pool = pool
	}
	return journal.NewRepo(a.pool).Record(ctx, e)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
