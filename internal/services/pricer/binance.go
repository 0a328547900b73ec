package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// BinancePricer fetches USDT-M futures prices.
type BinancePricer struct {
	client *futures.Client
}

// NewBinancePricer returns a pricer backed by the futures API.
func NewBinancePricer(client *futures.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

// GetPrice returns the latest price for the pair.
func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "failed to fetch price for %s", pair.String())
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned no prices for %s", pair.String())
	}
	return decimal.NewFromString(prices[0].Price)
}
