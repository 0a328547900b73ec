package position

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
	"github.com/arcade13/goodboytrader-bot/internal/services/accounting"
	"github.com/arcade13/goodboytrader-bot/internal/services/notifier"
	"github.com/arcade13/goodboytrader-bot/internal/services/trader"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// captureJournal records trades in memory so tests can inspect exit reasons.
type captureJournal struct {
	mu     sync.Mutex
	trades []domain.ClosedTrade
}

func (j *captureJournal) RecordTrade(_ string, t domain.ClosedTrade) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, t)
	return nil
}

func (j *captureJournal) SaveStats(string, domain.AccountStats) error { return nil }

func (j *captureJournal) LoadStats(string) (domain.AccountStats, error) {
	return domain.AccountStats{TotalPnl: decimal.Zero}, nil
}

func (j *captureJournal) last(t *testing.T) domain.ClosedTrade {
	j.mu.Lock()
	defer j.mu.Unlock()
	require.NotEmpty(t, j.trades)
	return j.trades[len(j.trades)-1]
}

type fixture struct {
	manager *Manager
	trader  *trader.SimulateTrader
	journal *captureJournal
	tracker *accounting.Tracker
}

func newFixture(t *testing.T, slippage string) *fixture {
	t.Helper()

	sim := trader.NewSimulateTrader()
	jrn := &captureJournal{}
	costs := accounting.CostParams{
		FeeRate:      d("0.00075"),
		SlippageRate: d("0.002"),
		Leverage:     d("1"),
		ProfitCut:    decimal.Zero,
	}
	tracker, err := accounting.NewTracker("acc", costs, jrn, zap.NewNop())
	require.NoError(t, err)

	m := NewManager("acc", domain.Pair{From: "SOL", To: "USDT"}, d(slippage), domain.DefaultRiskParams(),
		sim, tracker, nil, notifier.NewLogNotifier(zap.NewNop()), zap.NewNop())

	return &fixture{manager: m, trader: sim, journal: jrn, tracker: tracker}
}

// openLong opens a long at 100 with ATR 2 against a mean of 3:
// SL 97.5, TP1 103, TP2 104, trailing 96.4.
func (f *fixture) openLong(t *testing.T) {
	t.Helper()
	err := f.manager.Open(context.Background(), domain.SignalLong, d("100"), d("1"), d("2"), d("3"))
	require.NoError(t, err)
	require.False(t, f.manager.Flat())
}

func TestBreakevenArmsThenStopLossFires(t *testing.T) {
	f := newFixture(t, "0")
	f.openLong(t)

	// price touches TP1: stop lifts to entry, position stays open
	require.NoError(t, f.manager.Tick(context.Background(), d("103.2")))
	require.False(t, f.manager.Flat())
	p := f.manager.Current()
	require.True(t, p.BreakevenArmed)
	require.True(t, p.StopLoss.Equal(d("100")))

	// retreat below the lifted stop closes at breakeven
	require.NoError(t, f.manager.Tick(context.Background(), d("99.9")))
	require.True(t, f.manager.Flat())
	require.Equal(t, domain.ExitReasonStopLoss, f.journal.last(t).ExitReason)

	// exactly one entry and one close order
	require.Len(t, f.trader.Orders(), 2)
}

func TestTakeProfit2ClosesWholePosition(t *testing.T) {
	f := newFixture(t, "0")
	f.openLong(t)

	require.NoError(t, f.manager.Tick(context.Background(), d("104")))
	require.True(t, f.manager.Flat())

	tr := f.journal.last(t)
	require.Equal(t, domain.ExitReasonTakeProfit2, tr.ExitReason)
	require.True(t, tr.Size.Equal(d("1")))
	require.False(t, tr.Partial)
}

func TestExitPriorityManualBeatsEverything(t *testing.T) {
	f := newFixture(t, "0")
	f.openLong(t)

	require.NoError(t, f.manager.SetCustomTakeProfit(d("103.5")))
	require.True(t, f.manager.RequestManualClose())

	// 104.5 also satisfies custom TP and TP2, but manual close wins
	require.NoError(t, f.manager.Tick(context.Background(), d("104.5")))
	require.True(t, f.manager.Flat())
	require.Equal(t, domain.ExitReasonManualClose, f.journal.last(t).ExitReason)
}

func TestExitPriorityCustomTPBeatsTargets(t *testing.T) {
	f := newFixture(t, "0")
	f.openLong(t)

	require.NoError(t, f.manager.SetCustomTakeProfit(d("103.5")))

	require.NoError(t, f.manager.Tick(context.Background(), d("104.5")))
	require.True(t, f.manager.Flat())
	require.Equal(t, domain.ExitReasonCustomTP, f.journal.last(t).ExitReason)
}

func TestTrailingStopFiresBelowInitialStop(t *testing.T) {
	// widen the stop loss past the trailing level so the trailing stop is
	// the binding constraint
	f := newFixture(t, "0")
	risk := domain.DefaultRiskParams()
	risk.StopLossPct = d("0.10")
	f.manager.risk = risk
	f.openLong(t)

	// SL 90, trailing 96.4: a drop to 96 hits the trailing stop first
	require.NoError(t, f.manager.Tick(context.Background(), d("96")))
	require.True(t, f.manager.Flat())
	require.Equal(t, domain.ExitReasonTrailingStop, f.journal.last(t).ExitReason)
}

func TestRejectedCloseKeepsPositionAndRetries(t *testing.T) {
	f := newFixture(t, "0")
	f.openLong(t)

	f.trader.RejectNext(1)
	err := f.manager.Tick(context.Background(), d("97"))
	require.Error(t, err)
	require.False(t, f.manager.Flat(), "position must survive a rejected close")
	require.Zero(t, f.tracker.Stats().TradeCount, "nothing settles before the close is acknowledged")

	// the same exit fires again and succeeds
	require.NoError(t, f.manager.Tick(context.Background(), d("97")))
	require.True(t, f.manager.Flat())
	require.Equal(t, 1, f.tracker.Stats().TradeCount)
}

func TestRejectedEntryDiscardsSignal(t *testing.T) {
	f := newFixture(t, "0")

	f.trader.RejectNext(1)
	err := f.manager.Open(context.Background(), domain.SignalLong, d("100"), d("1"), d("2"), d("3"))
	require.Error(t, err)
	require.True(t, f.manager.Flat())
	require.Empty(t, f.trader.Orders())
}

func TestSlippageShiftsPriceAgainstPosition(t *testing.T) {
	f := newFixture(t, "0.002")
	f.openLong(t)

	// 103.2 raw adjusts to 102.99, short of TP1
	require.NoError(t, f.manager.Tick(context.Background(), d("103.2")))
	require.False(t, f.manager.Current().BreakevenArmed)

	// 103.3 adjusts to 103.0934 and arms breakeven
	require.NoError(t, f.manager.Tick(context.Background(), d("103.3")))
	require.True(t, f.manager.Current().BreakevenArmed)
}

func TestManualCloseWithoutPosition(t *testing.T) {
	f := newFixture(t, "0")
	require.False(t, f.manager.RequestManualClose())
	require.Error(t, f.manager.SetCustomTakeProfit(d("100")))
}

func TestTickWhileFlatIsNoop(t *testing.T) {
	f := newFixture(t, "0")
	require.NoError(t, f.manager.Tick(context.Background(), d("100")))
	require.Empty(t, f.trader.Orders())
}

func TestRestore(t *testing.T) {
	f := newFixture(t, "0")

	p, err := domain.NewPosition(domain.PositionSideShort, d("100"), d("1"), d("2"), d("3"), time.Now(), domain.DefaultRiskParams())
	require.NoError(t, err)
	p.ArmBreakeven()

	f.manager.Restore(p)
	require.False(t, f.manager.Flat())

	restored := f.manager.Current()
	require.Equal(t, domain.PositionSideShort, restored.Side)
	require.True(t, restored.BreakevenArmed)
	require.True(t, restored.StopLoss.Equal(d("100")))
}

func TestDoubleOpenRejected(t *testing.T) {
	f := newFixture(t, "0")
	f.openLong(t)

	err := f.manager.Open(context.Background(), domain.SignalShort, d("100"), d("1"), d("2"), d("3"))
	require.Error(t, err)
	require.Len(t, f.trader.Orders(), 1)
}
