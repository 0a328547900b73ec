package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// tf builds a timeframe whose candles all close at the given price, with one
// snapshot per candle.
func tf(closePrice string, snapshots ...domain.IndicatorSnapshot) *domain.Timeframe {
	candles := make([]domain.MarketCandle, len(snapshots))
	for i := range candles {
		candles[i] = domain.MarketCandle{
			OpenTime: time.Now(),
			Open:     d(closePrice),
			High:     d(closePrice),
			Low:      d(closePrice),
			Close:    d(closePrice),
		}
	}
	return domain.NewTimeframe("test", candles, snapshots)
}

func emas(fast, mid, slow string) domain.IndicatorSnapshot {
	return domain.IndicatorSnapshot{EMAFast: d(fast), EMAMid: d(mid), EMASlow: d(slow)}
}

func TestScorecardLongOnBullishCross(t *testing.T) {
	// fast and mid EMA both cross above the slow EMA on the latest bar
	slow := tf("110",
		emas("99", "100", "100"),
		emas("101", "102", "100"),
	)
	fast := tf("110", emas("105", "103", "100"))

	ev := (&Scorecard{}).Evaluate(slow, fast)

	require.Equal(t, domain.SignalLong, ev.Signal)
	require.Equal(t, 4, ev.SlowLongPoints)
	require.Equal(t, 3, ev.FastLongPoints)
	require.Zero(t, ev.SlowShortPoints)
	require.Zero(t, ev.FastShortPoints)
}

func TestScorecardShortOnBearishCross(t *testing.T) {
	slow := tf("90",
		emas("101", "100", "100"),
		emas("99", "98", "100"),
	)
	fast := tf("90", emas("95", "97", "100"))

	ev := (&Scorecard{}).Evaluate(slow, fast)

	require.Equal(t, domain.SignalShort, ev.Signal)
	require.Equal(t, 4, ev.SlowShortPoints)
	require.Equal(t, 3, ev.FastShortPoints)
}

func TestScorecardNoSignalWithoutFullFastScore(t *testing.T) {
	slow := tf("110",
		emas("99", "100", "100"),
		emas("101", "102", "100"),
	)
	// fast EMA below mid breaks the fast-timeframe stack: 2 of 3 points
	fast := tf("110", emas("102", "103", "100"))

	ev := (&Scorecard{}).Evaluate(slow, fast)

	require.Equal(t, domain.SignalNone, ev.Signal)
	require.Equal(t, 2, ev.FastLongPoints)
}

func TestScorecardEqualityScoresNothing(t *testing.T) {
	// every comparison is strict: flat EMAs yield zero points everywhere
	flat := emas("100", "100", "100")
	slow := tf("100", flat, flat)
	fast := tf("100", flat)

	ev := (&Scorecard{}).Evaluate(slow, fast)

	require.Equal(t, domain.SignalNone, ev.Signal)
	require.Zero(t, ev.SlowLongPoints)
	require.Zero(t, ev.SlowShortPoints)
	require.Zero(t, ev.FastLongPoints)
	require.Zero(t, ev.FastShortPoints)
}

func TestScorecardDeterministic(t *testing.T) {
	slow := tf("110",
		emas("99", "100", "100"),
		emas("101", "102", "100"),
	)
	fast := tf("110", emas("105", "103", "100"))

	sc := &Scorecard{}
	first := sc.Evaluate(slow, fast)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, sc.Evaluate(slow, fast))
	}
}

func TestScorecardInsufficientWarmup(t *testing.T) {
	// a single slow candle has no previous snapshot
	slow := tf("100", emas("101", "102", "100"))
	fast := tf("100", emas("105", "103", "100"))

	ev := (&Scorecard{}).Evaluate(slow, fast)
	require.Equal(t, domain.SignalNone, ev.Signal)

	// fast timeframe entirely in warm-up
	empty := domain.NewTimeframe("test", nil, nil)
	ev = (&Scorecard{}).Evaluate(tf("100", emas("1", "1", "1"), emas("1", "1", "1")), empty)
	require.Equal(t, domain.SignalNone, ev.Signal)
}
