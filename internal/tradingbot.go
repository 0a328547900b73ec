// Package internal wires market data, strategy and position lifecycle into
// the per-account trading loop.
package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/config"
	"github.com/arcade13/goodboytrader-bot/internal/domain"
	"github.com/arcade13/goodboytrader-bot/internal/services/market/collector"
	"github.com/arcade13/goodboytrader-bot/internal/services/market/indicators"
	"github.com/arcade13/goodboytrader-bot/internal/services/position"
	"github.com/arcade13/goodboytrader-bot/internal/services/pricer"
	"github.com/arcade13/goodboytrader-bot/internal/services/strategy"
	"github.com/arcade13/goodboytrader-bot/internal/storage/positions"
	"github.com/arcade13/goodboytrader-bot/pkg/retrier"
)

// TradingBot runs one account: it evaluates entry signals on the candle
// cadence while flat and drives exit checks on the price-tick cadence while
// a position is open.
type TradingBot struct {
	cfg       config.Config
	klines    collector.KlineProvider
	pricer    pricer.Pricer
	stream    *collector.PriceStream
	evaluator strategy.Evaluator
	manager   *position.Manager
	store     positions.Store
	params    indicators.Params
	retrier   *retrier.Retrier
	l         *zap.Logger
}

// NewTradingBot assembles the loop for one account.
func NewTradingBot(cfg config.Config, klines collector.KlineProvider, pr pricer.Pricer,
	stream *collector.PriceStream, evaluator strategy.Evaluator, manager *position.Manager,
	store positions.Store, l *zap.Logger) *TradingBot {
	return &TradingBot{
		cfg:       cfg,
		klines:    klines,
		pricer:    pr,
		stream:    stream,
		evaluator: evaluator,
		manager:   manager,
		store:     store,
		params:    indicators.DefaultParams(),
		retrier:   retrier.New(),
		l:         l,
	}
}

// Run restores persisted state and drives the trading loop until the
// context is cancelled.
func (b *TradingBot) Run(ctx context.Context) error {
	if err := b.restore(); err != nil {
		return err
	}

	if b.stream != nil {
		go b.stream.Run(ctx)
	}

	candleTicker := time.NewTicker(b.cfg.CandleInterval)
	defer candleTicker.Stop()
	tickTicker := time.NewTicker(b.cfg.TickInterval)
	defer tickTicker.Stop()

	b.l.Info("trading bot started",
		zap.String("pair", b.cfg.Pair.String()),
		zap.String("strategy", b.evaluator.Name()))

	for {
		select {
		case <-ctx.Done():
			b.l.Info("trading bot stopped")
			return nil
		case <-candleTicker.C:
			if !b.manager.Flat() {
				continue
			}
			if err := b.evaluateOnce(ctx); err != nil {
				b.l.Error("evaluation cycle failed", zap.Error(err))
			}
		case <-tickTicker.C:
			if b.manager.Flat() {
				continue
			}
			if err := b.tickOnce(ctx); err != nil {
				b.l.Warn("tick cycle failed", zap.Error(err))
			}
		}
	}
}

func (b *TradingBot) restore() error {
	if b.store == nil {
		return nil
	}

	p, err := b.store.Load(b.cfg.AccountID)
	if err != nil {
		return errors.Wrap(err, "restore position")
	}
	b.manager.Restore(p)
	return nil
}

// evaluateOnce fetches both timeframes, computes indicators and opens a
// position if the strategy signals one. Transient market-data failures skip
// the cycle; the next candle tick retries naturally.
func (b *TradingBot) evaluateOnce(ctx context.Context) error {
	slow, err := b.timeframe(ctx, b.cfg.SlowInterval, b.cfg.SlowLimit)
	if err != nil {
		if errors.Is(err, collector.ErrUnavailable) {
			b.l.Warn("slow timeframe unavailable, skipping cycle", zap.Error(err))
			return nil
		}
		return err
	}

	fast, err := b.timeframe(ctx, b.cfg.FastInterval, b.cfg.FastLimit)
	if err != nil {
		if errors.Is(err, collector.ErrUnavailable) {
			b.l.Warn("fast timeframe unavailable, skipping cycle", zap.Error(err))
			return nil
		}
		return err
	}

	eval := b.evaluator.Evaluate(slow, fast)
	if eval.Signal == domain.SignalNone {
		return nil
	}

	b.l.Info("entry signal",
		zap.String("signal", eval.Signal.String()),
		zap.String("reason", eval.Reason))

	price, ok := fast.LatestPrice()
	if !ok {
		return errors.New("signal produced with no latest price")
	}

	snapshot, ok := fast.LatestSnapshot()
	if !ok {
		return errors.New("signal produced with no latest snapshot")
	}

	size := b.orderSize(price)
	if size.IsZero() {
		b.l.Warn("trade size below lot granularity, signal skipped",
			zap.String("price", price.String()))
		return nil
	}

	if err := b.manager.Open(ctx, eval.Signal, price, size, snapshot.ATR, snapshot.ATRMean); err != nil {
		// a rejected entry discards the signal; the next cycle starts fresh
		b.l.Warn("entry discarded", zap.Error(err))
	}
	return nil
}

// tickOnce feeds one market price into the position lifecycle. The streamed
// price is preferred; REST is the fallback with retries.
func (b *TradingBot) tickOnce(ctx context.Context) error {
	price, ok := decimal.Zero, false
	if b.stream != nil {
		price, ok = b.stream.LastPrice()
	}
	if !ok {
		var err error
		price, err = retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
			return b.pricer.GetPrice(ctx, b.cfg.Pair)
		})
		if err != nil {
			return errors.Wrap(err, "fetch tick price")
		}
	}

	return b.manager.Tick(ctx, price)
}

func (b *TradingBot) timeframe(ctx context.Context, interval string, limit int) (*domain.Timeframe, error) {
	candles, err := b.klines.GetKlines(ctx, b.cfg.Pair, interval, limit)
	if err != nil {
		return nil, err
	}
	tf, err := indicators.Compute(interval, candles, b.params)
	if err != nil {
		return nil, errors.Wrapf(err, "compute %s indicators", interval)
	}
	return tf, nil
}

// orderSize converts the configured quote-denominated trade size into a
// base amount rounded down to the instrument lot.
func (b *TradingBot) orderSize(price decimal.Decimal) decimal.Decimal {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	raw := b.cfg.TradeSize.Div(price)
	lots := raw.Div(b.cfg.LotSize).Floor()
	return lots.Mul(b.cfg.LotSize)
}

// Status summarizes the account for operator queries.
func (b *TradingBot) Status() string {
	p := b.manager.Current()
	if p == nil {
		return fmt.Sprintf("%s: flat", b.cfg.AccountID)
	}
	return fmt.Sprintf("%s: %s %s @ %s (SL %s)",
		b.cfg.AccountID, p.Side.String(), p.Size.String(), p.EntryPrice.String(), p.StopLoss.String())
}

// Manager exposes the lifecycle manager for operator commands.
func (b *TradingBot) Manager() *position.Manager {
	return b.manager
}
