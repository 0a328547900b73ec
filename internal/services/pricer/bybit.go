package pricer

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// BybitPricer fetches linear perpetual prices via the V5 API.
type BybitPricer struct {
	client *bybit.Client
}

// NewBybitPricer returns a pricer backed by the V5 market API.
func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

// GetPrice returns the latest price for the pair.
func (p *BybitPricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Linear,
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.LinearInverse.List) == 0 {
		return decimal.Decimal{}, fmt.Errorf("bybit API returned empty prices for %s", pair.String())
	}

	return decimal.NewFromString(result.Result.LinearInverse.List[0].LastPrice)
}
