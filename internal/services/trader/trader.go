// Package trader submits orders to exchanges.
package trader

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// Trader submits market orders for entries and closes.
//
// Submission must be idempotent-safe: callers pass a client order id and may
// retry a failed close on the next tick.
type Trader interface {
	SubmitMarketOrder(ctx context.Context, action domain.Action, amount decimal.Decimal, clientOrderID string) error
}
