package domain

// Signal directional trade signal produced by an evaluator.
// Stateless: recomputed fresh each evaluation cycle.
type Signal int

const (
	SignalNone Signal = iota
	SignalLong
	SignalShort
)

// String returns the string representation of the signal.
func (s Signal) String() string {
	switch s {
	case SignalLong:
		return "long"
	case SignalShort:
		return "short"
	default:
		return "none"
	}
}

// EntryAction maps the signal to the order action opening the position.
func (s Signal) EntryAction() Action {
	if s == SignalShort {
		return ActionOpenShort
	}
	return ActionOpenLong
}
