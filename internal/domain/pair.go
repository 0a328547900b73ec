// Package domain defines core data structures used throughout the trading bot.
package domain

import "fmt"

// Pair instrument traded as base/quote currencies.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// String returns the underscore-separated representation.
func (p *Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated exchange symbol.
func (p *Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}
