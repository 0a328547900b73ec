package internal

import (
	"context"
	"os"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/config"
	"github.com/arcade13/goodboytrader-bot/internal/services/accounting"
	"github.com/arcade13/goodboytrader-bot/internal/services/market/collector"
	"github.com/arcade13/goodboytrader-bot/internal/services/notifier"
	"github.com/arcade13/goodboytrader-bot/internal/services/position"
	"github.com/arcade13/goodboytrader-bot/internal/services/pricer"
	"github.com/arcade13/goodboytrader-bot/internal/services/strategy"
	"github.com/arcade13/goodboytrader-bot/internal/services/trader"
	"github.com/arcade13/goodboytrader-bot/internal/storage/positions"
	"github.com/arcade13/goodboytrader-bot/pkg/retrier"
)

// klineCacheTTL keeps several accounts on one instrument behind a single
// rate-limited candles call per interval.
const klineCacheTTL = 30 * time.Second

// Deps are the process-wide dependencies shared by every account bot.
type Deps struct {
	Store    positions.Store
	Journal  accounting.Journal
	Notifier notifier.Notifier
	Logger   *zap.Logger
}

// CreateTradingBot builds the full service stack for one account config.
func CreateTradingBot(ctx context.Context, cfg config.Config, deps Deps) (*TradingBot, error) {
	var (
		tr     trader.Trader
		pr     pricer.Pricer
		klines collector.KlineProvider
		stream *collector.PriceStream
	)

	switch cfg.Platform {
	case "binance":
		client := futures.NewClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET"))

		binanceTrader := trader.NewBinanceTrader(client, cfg.Pair, int(cfg.Leverage.IntPart()))
		if err := retrier.New().Do(ctx, binanceTrader.Init); err != nil {
			return nil, errors.Wrap(err, "init binance trader")
		}

		tr = binanceTrader
		pr = pricer.NewBinancePricer(client)
		klines = collector.NewBinanceKlineProvider(client)
		stream = collector.NewBinancePriceStream(cfg.Pair, deps.Logger)

	case "bybit":
		client := bybit.NewClient().WithAuth(os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET"))
		tr = trader.NewBybitTrader(client, cfg.Pair)
		pr = pricer.NewBybitPricer(client)
		klines = collector.NewBybitKlineProvider(client)

	case "simulate":
		// orders stay local; market data still comes from the public
		// binance endpoints so the simulated run sees real prices
		client := futures.NewClient("", "")
		tr = trader.NewSimulateTrader()
		pr = pricer.NewBinancePricer(client)
		klines = collector.NewBinanceKlineProvider(client)
		stream = collector.NewBinancePriceStream(cfg.Pair, deps.Logger)

	default:
		return nil, errors.Errorf("unsupported platform %q", cfg.Platform)
	}

	evaluator, err := strategy.New(cfg.Strategy, strategy.DefaultGatedThresholds())
	if err != nil {
		return nil, err
	}

	costs := accounting.CostParams{
		FeeRate:      cfg.FeeRate,
		SlippageRate: cfg.SlippageRate,
		Leverage:     cfg.Leverage,
		ProfitCut:    cfg.ProfitCut,
	}
	tracker, err := accounting.NewTracker(cfg.AccountID, costs, deps.Journal, deps.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "init trade tracker")
	}

	manager := position.NewManager(cfg.AccountID, cfg.Pair, cfg.SlippageRate, cfg.Risk,
		tr, tracker, deps.Store, deps.Notifier, deps.Logger)

	cached := collector.NewCachedKlines(klines, klineCacheTTL)

	return NewTradingBot(cfg, cached, pr, stream, evaluator, manager, deps.Store, deps.Logger), nil
}
