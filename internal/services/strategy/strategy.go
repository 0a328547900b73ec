// Package strategy contains the signal evaluators deciding long/short entry.
package strategy

import (
	"fmt"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// Evaluation a signal plus the diagnostics that produced it, surfaced in
// notifications.
type Evaluation struct {
	Signal domain.Signal
	Reason string

	SlowLongPoints  int
	SlowShortPoints int
	FastLongPoints  int
	FastShortPoints int
}

// Evaluator produces a directional signal from a slow and a fast timeframe.
// Implementations are stateless: identical inputs yield identical output.
type Evaluator interface {
	Name() string
	Evaluate(slow, fast *domain.Timeframe) Evaluation
}

// New returns the evaluator selected by name.
func New(name string, thresholds GatedThresholds) (Evaluator, error) {
	switch name {
	case "", NameScorecard:
		return &Scorecard{}, nil
	case NameGated:
		return &Gated{Thresholds: thresholds}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
