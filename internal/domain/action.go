package domain

// Action represents the type of trading action to be performed.
type Action int

const (
	ActionOpenLong Action = iota
	ActionCloseLong
	ActionOpenShort
	ActionCloseShort
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionOpenLong:
		return "open_long"
	case ActionCloseLong:
		return "close_long"
	case ActionOpenShort:
		return "open_short"
	case ActionCloseShort:
		return "close_short"
	default:
		return "unknown"
	}
}
