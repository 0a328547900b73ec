package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testCosts() CostParams {
	return CostParams{
		FeeRate:      d("0.00075"),
		SlippageRate: d("0.002"),
		Leverage:     d("1"),
		ProfitCut:    decimal.Zero,
	}
}

func TestComputeRealizedPnlLong(t *testing.T) {
	// raw 10, fees (100+110)*0.00075 = 0.1575, slippage 100*0.002*2 = 0.4
	pnl := ComputeRealizedPnl(domain.PositionSideLong, d("100"), d("110"), d("1"), false, testCosts())
	require.True(t, pnl.Equal(d("9.4425")), "pnl: %s", pnl)
}

func TestComputeRealizedPnlShort(t *testing.T) {
	// raw 10, fees (100+90)*0.00075 = 0.1425, slippage 0.4
	pnl := ComputeRealizedPnl(domain.PositionSideShort, d("100"), d("90"), d("1"), false, testCosts())
	require.True(t, pnl.Equal(d("9.4575")), "pnl: %s", pnl)
}

func TestComputeRealizedPnlPartialHalvesEverything(t *testing.T) {
	full := ComputeRealizedPnl(domain.PositionSideLong, d("100"), d("110"), d("1"), false, testCosts())
	half := ComputeRealizedPnl(domain.PositionSideLong, d("100"), d("110"), d("1"), true, testCosts())
	require.True(t, half.Mul(d("2")).Equal(full), "half=%s full=%s", half, full)
}

func TestComputeRealizedPnlLeverageAmplifiesRawMoveOnly(t *testing.T) {
	costs := testCosts()
	costs.Leverage = d("5")
	// raw 10*5 = 50, costs unchanged: 50 - 0.1575 - 0.4
	pnl := ComputeRealizedPnl(domain.PositionSideLong, d("100"), d("110"), d("1"), false, costs)
	require.True(t, pnl.Equal(d("49.4425")), "pnl: %s", pnl)
}

func TestComputeRealizedPnlProfitCut(t *testing.T) {
	costs := testCosts()
	costs.ProfitCut = d("0.1")
	pnl := ComputeRealizedPnl(domain.PositionSideLong, d("100"), d("110"), d("1"), false, costs)
	require.True(t, pnl.Equal(d("8.49825")), "pnl: %s", pnl)

	// losses are never reduced by the cut
	loss := ComputeRealizedPnl(domain.PositionSideLong, d("110"), d("100"), d("1"), false, costs)
	require.True(t, loss.IsNegative())
	require.True(t, loss.Equal(ComputeRealizedPnl(domain.PositionSideLong, d("110"), d("100"), d("1"), false, testCosts())))
}

func trade(id, entry, exit string, side domain.PositionSide) domain.ClosedTrade {
	return domain.ClosedTrade{
		ID:         id,
		Pair:       domain.Pair{From: "SOL", To: "USDT"},
		Side:       side,
		Size:       d("1"),
		EntryPrice: d(entry),
		ExitPrice:  d(exit),
		ExitReason: domain.ExitReasonTakeProfit2,
		EntryTime:  time.Now(),
		ExitTime:   time.Now(),
	}
}

func TestTrackerAccumulatesStats(t *testing.T) {
	tracker, err := NewTracker("acc", testCosts(), nil, zap.NewNop())
	require.NoError(t, err)

	recorded, err := tracker.Record(trade("t1", "100", "110", domain.PositionSideLong))
	require.NoError(t, err)
	require.True(t, recorded.RealizedPnl.Equal(d("9.4425")))

	_, err = tracker.Record(trade("t2", "100", "95", domain.PositionSideLong))
	require.NoError(t, err)

	stats := tracker.Stats()
	require.Equal(t, 2, stats.TradeCount)
	require.Equal(t, 1, stats.Wins)
	require.Equal(t, 1, stats.Losses)
	require.True(t, stats.TotalPnl.LessThan(d("9.4425")))
}

func TestTrackerZeroPnlIsNeitherWinNorLoss(t *testing.T) {
	costs := CostParams{
		FeeRate:      decimal.Zero,
		SlippageRate: decimal.Zero,
		Leverage:     d("1"),
		ProfitCut:    decimal.Zero,
	}
	tracker, err := NewTracker("acc", costs, nil, zap.NewNop())
	require.NoError(t, err)

	recorded, err := tracker.Record(trade("t1", "100", "100", domain.PositionSideLong))
	require.NoError(t, err)
	require.True(t, recorded.RealizedPnl.IsZero())

	stats := tracker.Stats()
	require.Equal(t, 1, stats.TradeCount)
	require.Zero(t, stats.Wins)
	require.Zero(t, stats.Losses)
}

func TestTrackerPartialCloseMovesPnlOnly(t *testing.T) {
	tracker, err := NewTracker("acc", testCosts(), nil, zap.NewNop())
	require.NoError(t, err)

	partial := trade("t1", "100", "110", domain.PositionSideLong)
	partial.Partial = true
	recorded, err := tracker.Record(partial)
	require.NoError(t, err)

	stats := tracker.Stats()
	require.True(t, stats.TotalPnl.Equal(recorded.RealizedPnl))
	require.Zero(t, stats.TradeCount)
	require.Zero(t, stats.Wins)
}

func TestTrackerIdempotentOnReplay(t *testing.T) {
	tracker, err := NewTracker("acc", testCosts(), nil, zap.NewNop())
	require.NoError(t, err)

	_, err = tracker.Record(trade("t1", "100", "110", domain.PositionSideLong))
	require.NoError(t, err)
	before := tracker.Stats()

	// replaying the same trade id must not change anything
	_, err = tracker.Record(trade("t1", "100", "110", domain.PositionSideLong))
	require.NoError(t, err)
	require.Equal(t, before, tracker.Stats())
}

func TestTrackerRejectsEmptyID(t *testing.T) {
	tracker, err := NewTracker("acc", testCosts(), nil, zap.NewNop())
	require.NoError(t, err)

	_, err = tracker.Record(trade("", "100", "110", domain.PositionSideLong))
	require.Error(t, err)
	require.Zero(t, tracker.Stats().TradeCount)
}
