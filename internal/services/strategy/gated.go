package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// NameGated selects the strict-ordering evaluator.
const NameGated = "gated"

// GatedThresholds RSI/ADX gates for the strict-ordering rule.
type GatedThresholds struct {
	RSILong  decimal.Decimal
	RSIShort decimal.Decimal
	ADXSlow  decimal.Decimal
	ADXFast  decimal.Decimal
}

// DefaultGatedThresholds returns the stock gates (RSI 55/45, ADX 12/15).
func DefaultGatedThresholds() GatedThresholds {
	return GatedThresholds{
		RSILong:  decimal.NewFromInt(55),
		RSIShort: decimal.NewFromInt(45),
		ADXSlow:  decimal.NewFromInt(12),
		ADXFast:  decimal.NewFromInt(15),
	}
}

// Gated is the simpler alternate rule: a strict close/EMA stack ordering
// gated by RSI and ADX thresholds on both timeframes. Selectable instead of
// the scorecard, never merged with it.
type Gated struct {
	Thresholds GatedThresholds
}

// Name returns the evaluator name.
func (g *Gated) Name() string { return NameGated }

// Evaluate applies the strict ordering plus RSI/ADX gates.
func (g *Gated) Evaluate(slow, fast *domain.Timeframe) Evaluation {
	slowSnap, okSlow := slow.LatestSnapshot()
	slowClose, okSlowClose := slow.LatestPrice()
	fastSnap, okFast := fast.LatestSnapshot()
	fastClose, okFastClose := fast.LatestPrice()
	if !okSlow || !okSlowClose || !okFast || !okFastClose {
		return Evaluation{Signal: domain.SignalNone, Reason: "insufficient warm-up data"}
	}

	t := g.Thresholds

	bearishSlow := slowClose.LessThan(slowSnap.EMAFast) &&
		slowSnap.EMAFast.LessThan(slowSnap.EMAMid) &&
		slowSnap.EMAMid.LessThan(slowSnap.EMASlow) &&
		slowSnap.RSI.LessThan(t.RSIShort) &&
		slowSnap.ADX.GreaterThanOrEqual(t.ADXSlow)

	bullishSlow := slowClose.GreaterThan(slowSnap.EMAFast) &&
		slowSnap.EMAFast.GreaterThan(slowSnap.EMAMid) &&
		slowSnap.EMAMid.GreaterThan(slowSnap.EMASlow) &&
		slowSnap.RSI.GreaterThan(t.RSILong) &&
		slowSnap.ADX.GreaterThanOrEqual(t.ADXSlow)

	reason := func(dir string) string {
		return fmt.Sprintf("%s: slow rsi=%s adx=%s, fast rsi=%s adx=%s",
			dir, slowSnap.RSI.StringFixed(1), slowSnap.ADX.StringFixed(1),
			fastSnap.RSI.StringFixed(1), fastSnap.ADX.StringFixed(1))
	}

	switch {
	case bearishSlow:
		bearishFast := fastSnap.EMAFast.LessThan(fastSnap.EMAMid) &&
			fastSnap.EMAMid.LessThan(fastSnap.EMASlow) &&
			fastClose.LessThan(fastSnap.EMASlow) &&
			fastSnap.RSI.LessThan(t.RSIShort) &&
			fastSnap.ADX.GreaterThanOrEqual(t.ADXFast)
		if bearishFast {
			return Evaluation{Signal: domain.SignalShort, Reason: reason("bearish")}
		}
	case bullishSlow:
		bullishFast := fastSnap.EMAFast.GreaterThan(fastSnap.EMAMid) &&
			fastSnap.EMAMid.GreaterThan(fastSnap.EMASlow) &&
			fastClose.GreaterThan(fastSnap.EMASlow) &&
			fastSnap.RSI.GreaterThan(t.RSILong) &&
			fastSnap.ADX.GreaterThanOrEqual(t.ADXFast)
		if bullishFast {
			return Evaluation{Signal: domain.SignalLong, Reason: reason("bullish")}
		}
	}

	return Evaluation{Signal: domain.SignalNone, Reason: "no qualifying setup"}
}
