package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arcade13/goodboytrader-bot/config"
	"github.com/arcade13/goodboytrader-bot/internal"
	"github.com/arcade13/goodboytrader-bot/internal/services/notifier"
	"github.com/arcade13/goodboytrader-bot/internal/setup"
	"github.com/arcade13/goodboytrader-bot/internal/storage/journal"
	"github.com/arcade13/goodboytrader-bot/internal/storage/positions"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "goodboytrader",
		Short: "Futures trading bot with two-timeframe signal evaluation",
	}

	var configPath, metricsAddr string

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the bot for every configured account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBots(cmd.Context(), configPath, metricsAddr)
		},
	}
	run.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to yaml config")
	run.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "metrics and operator command listen address, empty disables")

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration wizard",
		RunE: func(*cobra.Command, []string) error {
			return setup.RunTUI()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(*cobra.Command, []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(run, setupCmd, versionCmd)
	return root
}

func runBots(parent context.Context, configPath, metricsAddr string) error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	configs, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// accounts with the same path share one store handle
	stores := make(map[string]*positions.WALStore)
	defer func() {
		for _, s := range stores {
			s.Close()
		}
	}()
	journals := make(map[string]*journal.SQLiteJournal)
	defer func() {
		for _, j := range journals {
			j.Close()
		}
	}()

	ntf := buildNotifier(logger)
	registry := internal.NewRegistry()
	g, gctx := errgroup.WithContext(ctx)

	for _, cfg := range configs {
		cfg := cfg

		store, ok := stores[cfg.WALDir]
		if !ok {
			store, err = positions.NewWALStore(cfg.WALDir)
			if err != nil {
				logger.Fatal("failed to open position store",
					zap.String("account", cfg.AccountID), zap.Error(err))
			}
			stores[cfg.WALDir] = store
		}

		tradeJournal, ok := journals[cfg.JournalPath]
		if !ok {
			tradeJournal, err = journal.NewSQLite(cfg.JournalPath)
			if err != nil {
				logger.Fatal("failed to open trade journal",
					zap.String("account", cfg.AccountID), zap.Error(err))
			}
			journals[cfg.JournalPath] = tradeJournal
		}

		deps := internal.Deps{
			Store:    store,
			Journal:  tradeJournal,
			Notifier: ntf,
			Logger:   logger,
		}

		bot, err := internal.CreateTradingBot(gctx, cfg, deps)
		if err != nil {
			logger.Fatal("failed to create trading bot",
				zap.String("account", cfg.AccountID), zap.Error(err))
		}
		if err := registry.Add(cfg.AccountID, bot); err != nil {
			logger.Fatal("failed to register trading bot", zap.Error(err))
		}

		g.Go(func() error {
			return bot.Run(gctx)
		})
		logger.Info("started",
			zap.String("account", cfg.AccountID),
			zap.String("pair", cfg.Pair.String()))
	}

	if metricsAddr != "" {
		go serveOps(metricsAddr, registry, logger)
	}

	return g.Wait()
}

func buildNotifier(logger *zap.Logger) notifier.Notifier {
	token := os.Getenv("TELEGRAM_TOKEN")
	chatIDRaw := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatIDRaw == "" {
		return notifier.NewLogNotifier(logger)
	}

	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		logger.Warn("invalid TELEGRAM_CHAT_ID, falling back to log notifications", zap.Error(err))
		return notifier.NewLogNotifier(logger)
	}

	tg, err := notifier.NewTelegramNotifier(token, chatID, logger)
	if err != nil {
		logger.Warn("telegram unavailable, falling back to log notifications", zap.Error(err))
		return notifier.NewLogNotifier(logger)
	}
	return tg
}

// serveOps exposes prometheus metrics alongside the operator command
// endpoints (status, manual close, custom take-profit).
func serveOps(addr string, registry *internal.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", registry.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("ops listener stopped", zap.Error(err))
	}
}
