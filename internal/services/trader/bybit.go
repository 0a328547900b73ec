package trader

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// BybitTrader places linear perpetual market orders via the V5 API.
type BybitTrader struct {
	client *bybit.Client
	pair   domain.Pair
}

// NewBybitTrader returns a trader for the given pair.
func NewBybitTrader(client *bybit.Client, pair domain.Pair) *BybitTrader {
	return &BybitTrader{client: client, pair: pair}
}

// SubmitMarketOrder places a market order on the linear category.
func (t *BybitTrader) SubmitMarketOrder(ctx context.Context, action domain.Action, amount decimal.Decimal, clientOrderID string) error {
	amount = amount.RoundFloor(4)

	side := bybit.SideBuy
	if action == domain.ActionOpenShort || action == domain.ActionCloseLong {
		side = bybit.SideSell
	}

	_, err := t.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    bybit.CategoryV5Linear,
		Symbol:      bybit.SymbolV5(t.pair.Symbol()),
		Side:        side,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         amount.String(),
		OrderLinkID: &clientOrderID,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to submit %s order for %s", action.String(), t.pair.String())
	}
	return nil
}
