package strategy

import (
	"fmt"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// NameScorecard selects the point-scored evaluator.
const NameScorecard = "scorecard"

const (
	slowPointsRequired = 3
	fastPointsRequired = 3
)

// Scorecard is the canonical point-scored threshold rule.
//
// Slow-timeframe points (0-4 per direction), one point each for the fast
// and mid EMA crossing the slow EMA this bar, and for each currently being
// on the signal side of the slow EMA. Fast-timeframe points (0-3): close,
// fast-vs-mid and mid-vs-slow EMA orderings. A direction fires when the
// slow score reaches 3 and the fast score is exactly 3. All comparisons are
// strict: equal values never score a point.
//
// Short is evaluated before Long. The EMA orderings make a simultaneous
// qualifying score in both directions unreachable in practice, but the
// ordering is the documented tie-break should boundary values ever produce
// one.
type Scorecard struct{}

// Name returns the evaluator name.
func (s *Scorecard) Name() string { return NameScorecard }

// Evaluate scores the latest two slow-timeframe snapshots and the latest
// fast-timeframe snapshot. Missing snapshots (warm-up) yield SignalNone.
func (s *Scorecard) Evaluate(slow, fast *domain.Timeframe) Evaluation {
	cur, okCur := slow.LatestSnapshot()
	prev, okPrev := slow.PreviousSnapshot()
	fastSnap, okFast := fast.LatestSnapshot()
	fastClose, okClose := fast.LatestPrice()
	if !okCur || !okPrev || !okFast || !okClose {
		return Evaluation{Signal: domain.SignalNone, Reason: "insufficient warm-up data"}
	}

	ev := Evaluation{Signal: domain.SignalNone}

	// slow timeframe: cross events this bar plus current EMA ordering
	if prev.EMAFast.GreaterThanOrEqual(prev.EMASlow) && cur.EMAFast.LessThan(cur.EMASlow) {
		ev.SlowShortPoints++
	}
	if prev.EMAMid.GreaterThanOrEqual(prev.EMASlow) && cur.EMAMid.LessThan(cur.EMASlow) {
		ev.SlowShortPoints++
	}
	if cur.EMAFast.LessThan(cur.EMASlow) {
		ev.SlowShortPoints++
	}
	if cur.EMAMid.LessThan(cur.EMASlow) {
		ev.SlowShortPoints++
	}

	if prev.EMAFast.LessThanOrEqual(prev.EMASlow) && cur.EMAFast.GreaterThan(cur.EMASlow) {
		ev.SlowLongPoints++
	}
	if prev.EMAMid.LessThanOrEqual(prev.EMASlow) && cur.EMAMid.GreaterThan(cur.EMASlow) {
		ev.SlowLongPoints++
	}
	if cur.EMAFast.GreaterThan(cur.EMASlow) {
		ev.SlowLongPoints++
	}
	if cur.EMAMid.GreaterThan(cur.EMASlow) {
		ev.SlowLongPoints++
	}

	// fast timeframe: price and EMA stack ordering
	if fastClose.LessThan(fastSnap.EMASlow) {
		ev.FastShortPoints++
	}
	if fastSnap.EMAFast.LessThan(fastSnap.EMAMid) {
		ev.FastShortPoints++
	}
	if fastSnap.EMAMid.LessThan(fastSnap.EMASlow) {
		ev.FastShortPoints++
	}

	if fastClose.GreaterThan(fastSnap.EMASlow) {
		ev.FastLongPoints++
	}
	if fastSnap.EMAFast.GreaterThan(fastSnap.EMAMid) {
		ev.FastLongPoints++
	}
	if fastSnap.EMAMid.GreaterThan(fastSnap.EMASlow) {
		ev.FastLongPoints++
	}

	// short first: documented tie-break
	switch {
	case ev.SlowShortPoints >= slowPointsRequired && ev.FastShortPoints == fastPointsRequired:
		ev.Signal = domain.SignalShort
	case ev.SlowLongPoints >= slowPointsRequired && ev.FastLongPoints == fastPointsRequired:
		ev.Signal = domain.SignalLong
	}

	ev.Reason = fmt.Sprintf("slow long=%d short=%d, fast long=%d short=%d",
		ev.SlowLongPoints, ev.SlowShortPoints, ev.FastLongPoints, ev.FastShortPoints)

	return ev
}
