package domain

import "github.com/shopspring/decimal"

// IndicatorSnapshot derived indicator values attached to a candle.
//
// A snapshot only exists for candles past the warm-up of every indicator
// window; earlier candles have no snapshot at all. Callers must treat a
// missing snapshot as "bar unusable for signals", never as zero values.
type IndicatorSnapshot struct {
	EMAFast    decimal.Decimal
	EMAMid     decimal.Decimal
	EMASlow    decimal.Decimal
	RSI        decimal.Decimal
	ADX        decimal.Decimal
	ATR        decimal.Decimal
	ATRMean    decimal.Decimal
	MACD       decimal.Decimal
	MACDSignal decimal.Decimal
}

// Timeframe candlestick series with aligned indicator snapshots.
//
// Snapshots cover the tail of the candle series; snapshotOffset is the
// number of leading warm-up candles without indicator values.
type Timeframe struct {
	Interval       string
	Candles        []MarketCandle
	Snapshots      []IndicatorSnapshot
	snapshotOffset int
}

// NewTimeframe constructs a Timeframe, deriving the warm-up offset.
func NewTimeframe(interval string, candles []MarketCandle, snapshots []IndicatorSnapshot) *Timeframe {
	offset := 0
	if len(candles) > len(snapshots) {
		offset = len(candles) - len(snapshots)
	}

	return &Timeframe{
		Interval:       interval,
		Candles:        candles,
		Snapshots:      snapshots,
		snapshotOffset: offset,
	}
}

// SnapshotForCandle returns the indicator snapshot for a candle index.
// Returns ok=false for warm-up candles.
func (t *Timeframe) SnapshotForCandle(candleIdx int) (IndicatorSnapshot, bool) {
	if t == nil || len(t.Snapshots) == 0 {
		return IndicatorSnapshot{}, false
	}

	index := candleIdx - t.snapshotOffset
	if index < 0 || index >= len(t.Snapshots) {
		return IndicatorSnapshot{}, false
	}

	return t.Snapshots[index], true
}

// LatestCandle returns the most recent candlestick.
func (t *Timeframe) LatestCandle() (MarketCandle, bool) {
	if t == nil || len(t.Candles) == 0 {
		return MarketCandle{}, false
	}
	return t.Candles[len(t.Candles)-1], true
}

// LatestSnapshot returns the snapshot of the most recent candle.
func (t *Timeframe) LatestSnapshot() (IndicatorSnapshot, bool) {
	if t == nil || len(t.Candles) == 0 {
		return IndicatorSnapshot{}, false
	}
	return t.SnapshotForCandle(len(t.Candles) - 1)
}

// PreviousSnapshot returns the snapshot of the candle before the latest one.
func (t *Timeframe) PreviousSnapshot() (IndicatorSnapshot, bool) {
	if t == nil || len(t.Candles) < 2 {
		return IndicatorSnapshot{}, false
	}
	return t.SnapshotForCandle(len(t.Candles) - 2)
}

// LatestPrice returns the close price of the most recent candle.
func (t *Timeframe) LatestPrice() (decimal.Decimal, bool) {
	candle, ok := t.LatestCandle()
	if !ok {
		return decimal.Zero, false
	}
	return candle.Close, true
}
