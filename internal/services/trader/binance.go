package trader

import (
	"context"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// BinanceTrader places USDT-M futures market orders.
type BinanceTrader struct {
	client   *futures.Client
	pair     domain.Pair
	leverage int
}

// NewBinanceTrader returns a trader for the given pair.
func NewBinanceTrader(client *futures.Client, pair domain.Pair, leverage int) *BinanceTrader {
	return &BinanceTrader{client: client, pair: pair, leverage: leverage}
}

// Init applies the configured leverage on the exchange.
func (t *BinanceTrader) Init(ctx context.Context) error {
	if t.leverage <= 1 {
		return nil
	}
	_, err := t.client.NewChangeLeverageService().
		Symbol(t.pair.Symbol()).
		Leverage(t.leverage).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to set leverage %dx for %s", t.leverage, t.pair.String())
	}
	return nil
}

// SubmitMarketOrder places a market order in hedge-mode position semantics.
func (t *BinanceTrader) SubmitMarketOrder(ctx context.Context, action domain.Action, amount decimal.Decimal, clientOrderID string) error {
	amount = amount.RoundFloor(4)

	side, positionSide := orderSides(action)
	_, err := t.client.NewCreateOrderService().
		Symbol(t.pair.Symbol()).
		Side(side).
		PositionSide(positionSide).
		Type(futures.OrderTypeMarket).
		Quantity(amount.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to submit %s order for %s", action.String(), t.pair.String())
	}
	return nil
}

func orderSides(action domain.Action) (futures.SideType, futures.PositionSideType) {
	switch action {
	case domain.ActionOpenLong:
		return futures.SideTypeBuy, futures.PositionSideTypeLong
	case domain.ActionCloseLong:
		return futures.SideTypeSell, futures.PositionSideTypeLong
	case domain.ActionOpenShort:
		return futures.SideTypeSell, futures.PositionSideTypeShort
	default:
		return futures.SideTypeBuy, futures.PositionSideTypeShort
	}
}
