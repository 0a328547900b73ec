// Package accounting turns close fills into realized pnl and lifetime stats.
package accounting

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

var two = decimal.NewFromInt(2)

// CostParams cost model applied to every realized trade.
type CostParams struct {
	// FeeRate taker fee fraction charged on entry and exit notional.
	FeeRate decimal.Decimal
	// SlippageRate assumed adverse fill fraction, charged on both legs.
	SlippageRate decimal.Decimal
	// Leverage amplifies the raw price move of the position.
	Leverage decimal.Decimal
	// ProfitCut fraction of positive pnl withheld (referral/profit share).
	// Zero disables the cut.
	ProfitCut decimal.Decimal
}

// DefaultCostParams returns the stock cost model.
func DefaultCostParams() CostParams {
	return CostParams{
		FeeRate:      decimal.NewFromFloat(0.00075),
		SlippageRate: decimal.NewFromFloat(0.002),
		Leverage:     decimal.NewFromInt(5),
		ProfitCut:    decimal.Zero,
	}
}

// ComputeRealizedPnl prices a close fill under the cost model.
//
// The raw leveraged move is reduced by fees on both notionals and by the
// slippage allowance charged twice against the entry notional. A partial
// close halves the size, which halves every notional-derived term with it.
func ComputeRealizedPnl(side domain.PositionSide, entryPrice, exitPrice, size decimal.Decimal, partial bool, costs CostParams) decimal.Decimal {
	if partial {
		size = size.Div(two)
	}

	entryNotional := entryPrice.Mul(size)
	exitNotional := exitPrice.Mul(size)

	move := exitPrice.Sub(entryPrice)
	if side == domain.PositionSideShort {
		move = entryPrice.Sub(exitPrice)
	}
	raw := move.Mul(size).Mul(costs.Leverage)

	fees := entryNotional.Add(exitNotional).Mul(costs.FeeRate)
	slippage := entryNotional.Mul(costs.SlippageRate).Mul(two)

	pnl := raw.Sub(fees).Sub(slippage)
	if pnl.IsPositive() && costs.ProfitCut.IsPositive() {
		pnl = pnl.Sub(pnl.Mul(costs.ProfitCut))
	}
	return pnl
}

// Journal is the durable sink for trades and statistics. All methods must be
// idempotent with respect to trade id replays.
type Journal interface {
	RecordTrade(accountID string, trade domain.ClosedTrade) error
	SaveStats(accountID string, stats domain.AccountStats) error
	LoadStats(accountID string) (domain.AccountStats, error)
}

// Tracker accumulates realized pnl and win/loss counts for one account.
// Record is idempotent: replaying a trade id is a no-op, so recovery paths
// can resubmit without double counting.
type Tracker struct {
	mu        sync.Mutex
	accountID string
	costs     CostParams
	stats     domain.AccountStats
	processed map[string]struct{}
	journal   Journal
	l         *zap.Logger
}

// NewTracker builds a tracker, loading persisted stats when a journal is set.
func NewTracker(accountID string, costs CostParams, journal Journal, l *zap.Logger) (*Tracker, error) {
	t := &Tracker{
		accountID: accountID,
		costs:     costs,
		stats:     domain.AccountStats{TotalPnl: decimal.Zero},
		processed: make(map[string]struct{}),
		journal:   journal,
		l:         l,
	}

	if journal != nil {
		stats, err := journal.LoadStats(accountID)
		if err != nil {
			return nil, errors.Wrap(err, "restore account stats")
		}
		t.stats = stats
	}

	return t, nil
}

// Costs returns the cost model used for realized pnl.
func (t *Tracker) Costs() CostParams {
	return t.costs
}

// Record prices the trade, fills in RealizedPnl and folds it into the
// account statistics. The returned trade carries the computed pnl.
func (t *Tracker) Record(trade domain.ClosedTrade) (domain.ClosedTrade, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if trade.ID == "" {
		return trade, errors.New("trade id is required")
	}
	if _, seen := t.processed[trade.ID]; seen {
		t.l.Debug("trade already recorded, skipping", zap.String("trade", trade.ID))
		return trade, nil
	}

	trade.RealizedPnl = ComputeRealizedPnl(trade.Side, trade.EntryPrice, trade.ExitPrice, trade.Size, trade.Partial, t.costs)

	// partial closes move pnl only; trade and win/loss counts track full closes
	t.stats.TotalPnl = t.stats.TotalPnl.Add(trade.RealizedPnl)
	if !trade.Partial {
		t.stats.TradeCount++
		switch {
		case trade.RealizedPnl.IsPositive():
			t.stats.Wins++
		case trade.RealizedPnl.IsNegative():
			t.stats.Losses++
		}
	}
	t.processed[trade.ID] = struct{}{}

	if t.journal != nil {
		if err := t.journal.RecordTrade(t.accountID, trade); err != nil {
			t.l.Error("failed to journal trade", zap.String("trade", trade.ID), zap.Error(err))
		}
		if err := t.journal.SaveStats(t.accountID, t.stats); err != nil {
			t.l.Error("failed to journal stats", zap.Error(err))
		}
	}

	t.l.Info("trade recorded",
		zap.String("trade", trade.ID),
		zap.String("reason", string(trade.ExitReason)),
		zap.String("pnl", trade.RealizedPnl.String()),
		zap.String("total", t.stats.TotalPnl.String()))

	return trade, nil
}

// Stats returns a copy of the current account statistics.
func (t *Tracker) Stats() domain.AccountStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
