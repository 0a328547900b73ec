// Package pricer fetches last-trade prices from exchanges.
package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// Pricer returns the latest price for a pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}
