// Package position owns the lifecycle of the single live position per
// account: entry, exit evaluation on every price tick, and close settlement.
package position

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
	"github.com/arcade13/goodboytrader-bot/internal/metrics"
	"github.com/arcade13/goodboytrader-bot/internal/services/accounting"
	"github.com/arcade13/goodboytrader-bot/internal/services/notifier"
	"github.com/arcade13/goodboytrader-bot/internal/services/trader"
	"github.com/arcade13/goodboytrader-bot/internal/storage/positions"
	"github.com/arcade13/goodboytrader-bot/pkg/id"
)

var one = decimal.NewFromInt(1)

// Manager drives one account's position through open, ticks and close.
//
// All state transitions happen under a single mutex, so concurrent price
// ticks, manual close requests and custom take-profit updates serialize.
// Exactly one close order is ever acknowledged per position: once the
// exchange confirms the close, the position is gone and later ticks no-op.
type Manager struct {
	mu sync.Mutex

	accountID string
	pair      domain.Pair
	slippage  decimal.Decimal
	risk      domain.RiskParams

	position    *domain.Position
	manualClose bool
	customTP    decimal.Decimal
	hasCustomTP bool

	trader   trader.Trader
	tracker  *accounting.Tracker
	store    positions.Store
	notifier notifier.Notifier
	l        *zap.Logger
}

// NewManager wires a lifecycle manager for one account.
func NewManager(accountID string, pair domain.Pair, slippage decimal.Decimal, risk domain.RiskParams,
	tr trader.Trader, tracker *accounting.Tracker, store positions.Store, ntf notifier.Notifier, l *zap.Logger) *Manager {
	return &Manager{
		accountID: accountID,
		pair:      pair,
		slippage:  slippage,
		risk:      risk,
		trader:    tr,
		tracker:   tracker,
		store:     store,
		notifier:  ntf,
		l:         l,
	}
}

// Flat reports whether no position is open.
func (m *Manager) Flat() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position == nil
}

// Current returns a copy of the open position, nil when flat.
func (m *Manager) Current() *domain.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position == nil {
		return nil
	}
	cp := *m.position
	return &cp
}

// Restore installs a previously persisted position after restart. Exit
// levels and the armed-breakeven flag come back exactly as saved; custom
// take-profit and pending manual close requests do not survive restarts.
func (m *Manager) Restore(p *domain.Position) {
	if p == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.position = p
	metrics.OpenPositions.WithLabelValues(m.accountID).Set(1)
	m.l.Info("position restored",
		zap.String("side", p.Side.String()),
		zap.String("entry", p.EntryPrice.String()),
		zap.String("stop", p.StopLoss.String()))
}

// Open submits the entry order and, only on acknowledgement, creates the
// position. A rejected entry order discards the signal entirely: no
// position, no retry, the next evaluation cycle starts fresh.
func (m *Manager) Open(ctx context.Context, signal domain.Signal, price, size, entryATR, atrMean decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.position != nil {
		return errors.New("position already open")
	}
	if signal == domain.SignalNone {
		return errors.New("cannot open position without a signal")
	}

	action := signal.EntryAction()
	if err := m.trader.SubmitMarketOrder(ctx, action, size, uuid.NewString()); err != nil {
		metrics.OrderFailures.WithLabelValues("entry").Inc()
		return errors.Wrapf(err, "entry order rejected for %s", m.pair.String())
	}

	side := domain.PositionSideLong
	if signal == domain.SignalShort {
		side = domain.PositionSideShort
	}

	p, err := domain.NewPosition(side, price, size, entryATR, atrMean, time.Now().UTC(), m.risk)
	if err != nil {
		// order went through but the position is invalid; this indicates a
		// sizing bug upstream, surface it loudly
		return errors.Wrap(err, "entry order filled but position construction failed")
	}

	m.position = p
	m.manualClose = false
	m.hasCustomTP = false

	if err := m.persistLocked(); err != nil {
		m.l.Error("failed to persist opened position", zap.Error(err))
	}

	metrics.SignalsTotal.WithLabelValues(signal.String()).Inc()
	metrics.OpenPositions.WithLabelValues(m.accountID).Set(1)

	m.notifier.Notify(ctx, m.accountID, fmt.Sprintf(
		"Opened %s %s %s @ %s | SL %s TP1 %s TP2 %s TRL %s",
		side.String(), size.String(), m.pair.String(), price.String(),
		p.StopLoss.String(), p.TakeProfit1.String(), p.TakeProfit2.String(), p.TrailingStop.String()))

	m.l.Info("position opened",
		zap.String("side", side.String()),
		zap.String("entry", price.String()),
		zap.String("size", size.String()))

	return nil
}

// RequestManualClose marks the position for closing on the next tick.
// Manual close outranks every automatic exit.
func (m *Manager) RequestManualClose() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position == nil {
		return false
	}
	m.manualClose = true
	return true
}

// SetCustomTakeProfit installs a price target that, once reached, closes the
// position ahead of stop-loss and the regular targets.
func (m *Manager) SetCustomTakeProfit(price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position == nil {
		return errors.New("no open position")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return errors.New("custom take-profit must be greater than zero")
	}
	m.customTP = price
	m.hasCustomTP = true
	return nil
}

// Tick evaluates the open position against a fresh market price. The raw
// price is first shifted against the position by the slippage allowance, so
// every level comparison uses the price a market close would realistically
// fill at.
//
// Breakeven arming is checked on every tick, independent of exits. Exit
// conditions are then evaluated in strict priority order; the highest
// matching one closes the whole position.
func (m *Manager) Tick(ctx context.Context, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.position
	if p == nil {
		return nil
	}

	adjusted := m.adjustForSlippage(p.Side, price)

	if !p.BreakevenArmed && p.ReachedTarget(adjusted, p.TakeProfit1) {
		p.ArmBreakeven()
		if err := m.persistLocked(); err != nil {
			m.l.Error("failed to persist breakeven stop", zap.Error(err))
		}
		m.notifier.Notify(ctx, m.accountID, fmt.Sprintf(
			"%s: TP1 reached at %s, stop moved to breakeven %s",
			m.pair.String(), adjusted.String(), p.StopLoss.String()))
		m.l.Info("breakeven armed", zap.String("price", adjusted.String()))
	}

	reason, ok := m.exitReasonLocked(p, adjusted)
	if !ok {
		return nil
	}

	return m.closeLocked(ctx, p, adjusted, reason)
}

// exitReasonLocked returns the highest-priority exit condition matched by
// the slippage-adjusted price. Priority, highest first: manual close,
// custom take-profit, stop loss, take-profit 2, trailing stop.
func (m *Manager) exitReasonLocked(p *domain.Position, adjusted decimal.Decimal) (domain.ExitReason, bool) {
	switch {
	case m.manualClose:
		return domain.ExitReasonManualClose, true
	case m.hasCustomTP && p.ReachedTarget(adjusted, m.customTP):
		return domain.ExitReasonCustomTP, true
	case p.BreachedStop(adjusted, p.StopLoss):
		return domain.ExitReasonStopLoss, true
	case p.ReachedTarget(adjusted, p.TakeProfit2):
		return domain.ExitReasonTakeProfit2, true
	case p.BreachedStop(adjusted, p.TrailingStop):
		return domain.ExitReasonTrailingStop, true
	}
	return "", false
}

// closeLocked submits the close order and settles the trade. If the
// exchange rejects the order the position stays open untouched and the same
// exit fires again on the next tick.
func (m *Manager) closeLocked(ctx context.Context, p *domain.Position, exitPrice decimal.Decimal, reason domain.ExitReason) error {
	if err := m.trader.SubmitMarketOrder(ctx, p.Side.CloseAction(), p.Size, uuid.NewString()); err != nil {
		metrics.OrderFailures.WithLabelValues("close").Inc()
		m.l.Warn("close order rejected, will retry next tick",
			zap.String("reason", string(reason)), zap.Error(err))
		return errors.Wrapf(err, "close order rejected (%s)", reason)
	}

	trade := domain.ClosedTrade{
		ID:         id.New(),
		Pair:       m.pair,
		Side:       p.Side,
		Size:       p.Size,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		EntryTime:  p.EntryTime,
		ExitTime:   time.Now().UTC(),
	}

	recorded, err := m.tracker.Record(trade)
	if err != nil {
		m.l.Error("failed to record closed trade", zap.Error(err))
		recorded = trade
	}

	m.position = nil
	m.manualClose = false
	m.hasCustomTP = false

	if m.store != nil {
		if err := m.store.Clear(m.accountID); err != nil {
			m.l.Error("failed to clear persisted position", zap.Error(err))
		}
	}

	metrics.TradesClosedTotal.WithLabelValues(string(reason)).Inc()
	metrics.OpenPositions.WithLabelValues(m.accountID).Set(0)
	total, _ := m.tracker.Stats().TotalPnl.Float64()
	metrics.TotalPnl.WithLabelValues(m.accountID).Set(total)

	m.notifier.Notify(ctx, m.accountID, fmt.Sprintf(
		"Closed %s (%s): %s", m.pair.String(), reason, recorded.String()))

	m.l.Info("position closed",
		zap.String("reason", string(reason)),
		zap.String("exit", exitPrice.String()),
		zap.String("pnl", recorded.RealizedPnl.String()))

	return nil
}

// adjustForSlippage shifts the price against the position: a long sells
// below the quoted price, a short buys above it.
func (m *Manager) adjustForSlippage(side domain.PositionSide, price decimal.Decimal) decimal.Decimal {
	if m.slippage.IsZero() {
		return price
	}
	if side == domain.PositionSideLong {
		return price.Mul(one.Sub(m.slippage))
	}
	return price.Mul(one.Add(m.slippage))
}

func (m *Manager) persistLocked() error {
	if m.store == nil {
		return nil
	}
	return m.store.Save(m.accountID, m.position)
}
