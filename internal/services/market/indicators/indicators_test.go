package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// syntheticCandles produces a gently oscillating series around a base price.
func syntheticCandles(n int) []domain.MarketCandle {
	candles := make([]domain.MarketCandle, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		base := 100 + 5*math.Sin(float64(i)/7)
		candles[i] = domain.MarketCandle{
			OpenTime:  start.Add(time.Duration(i) * time.Minute),
			Open:      decimal.NewFromFloat(base),
			High:      decimal.NewFromFloat(base + 1),
			Low:       decimal.NewFromFloat(base - 1),
			Close:     decimal.NewFromFloat(base + 0.3),
			Volume:    decimal.NewFromInt(1000),
			CloseTime: start.Add(time.Duration(i+1) * time.Minute),
		}
	}
	return candles
}

func TestComputeAlignsSnapshotsToSlowEMAWarmup(t *testing.T) {
	candles := syntheticCandles(120)
	tf, err := Compute("15m", candles, DefaultParams())
	require.NoError(t, err)

	// the slow EMA (period 100) has the longest warm-up: 99 idle candles
	require.Len(t, tf.Snapshots, 21)

	_, ok := tf.SnapshotForCandle(98)
	require.False(t, ok, "warm-up candles have no snapshot")
	_, ok = tf.SnapshotForCandle(99)
	require.True(t, ok, "first post-warm-up candle has a snapshot")
	_, ok = tf.LatestSnapshot()
	require.True(t, ok)
}

func TestComputeSnapshotValuesAreSane(t *testing.T) {
	candles := syntheticCandles(150)
	tf, err := Compute("15m", candles, DefaultParams())
	require.NoError(t, err)

	for _, s := range tf.Snapshots {
		require.True(t, s.EMAFast.IsPositive())
		require.True(t, s.EMAMid.IsPositive())
		require.True(t, s.EMASlow.IsPositive())
		require.True(t, s.RSI.GreaterThanOrEqual(decimal.Zero))
		require.True(t, s.RSI.LessThanOrEqual(decimal.NewFromInt(100)))
		require.True(t, s.ATR.IsPositive())
		require.True(t, s.ATRMean.IsPositive())
		require.True(t, s.ADX.GreaterThanOrEqual(decimal.Zero))
	}
}

func TestComputeShortSeriesYieldsNoSnapshots(t *testing.T) {
	for _, n := range []int{0, 1, 2, 50, 99} {
		tf, err := Compute("15m", syntheticCandles(n), DefaultParams())
		require.NoError(t, err)
		require.Empty(t, tf.Snapshots, "n=%d", n)

		_, ok := tf.LatestSnapshot()
		require.False(t, ok, "n=%d", n)
	}
}

func TestComputeDeterministic(t *testing.T) {
	candles := syntheticCandles(130)
	first, err := Compute("4h", candles, DefaultParams())
	require.NoError(t, err)
	second, err := Compute("4h", candles, DefaultParams())
	require.NoError(t, err)

	require.Equal(t, len(first.Snapshots), len(second.Snapshots))
	for i := range first.Snapshots {
		require.Equal(t, first.Snapshots[i], second.Snapshots[i])
	}
}

func TestTrailingMean(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	means := trailingMean(vals, 3)
	require.Equal(t, []float64{2, 3, 4}, means)

	require.Nil(t, trailingMean([]float64{1, 2}, 3))
	require.Nil(t, trailingMean(vals, 0))
}

func TestADXSeriesNeedsTwoFullPeriods(t *testing.T) {
	candles := syntheticCandles(28)
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i], _ = c.High.Float64()
		lows[i], _ = c.Low.Float64()
		closes[i], _ = c.Close.Float64()
	}

	require.Nil(t, adxSeries(highs, lows, closes, 14), "28 candles is one short of the 2*14+1 floor")

	highs = append(highs, highs[27]+0.5)
	lows = append(lows, lows[27]+0.5)
	closes = append(closes, closes[27]+0.5)
	out := adxSeries(highs, lows, closes, 14)
	require.Len(t, out, 1)
	require.GreaterOrEqual(t, out[0], 0.0)
	require.LessOrEqual(t, out[0], 100.0)
}
