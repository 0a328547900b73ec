package collector

import (
	"context"
	"fmt"

	bybit "github.com/hirokisan/bybit/v2"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// BybitKlineProvider implements KlineProvider for Bybit.
type BybitKlineProvider struct {
	client *bybit.Client
}

// NewBybitKlineProvider creates a new Bybit kline provider.
func NewBybitKlineProvider(client *bybit.Client) *BybitKlineProvider {
	return &BybitKlineProvider{client: client}
}

// GetKlines fetches kline data from Bybit.
func (p *BybitKlineProvider) GetKlines(context.Context, domain.Pair, string, int) ([]domain.MarketCandle, error) {
	return nil, fmt.Errorf("bybit kline provider is not yet implemented - use the binance platform for signal evaluation")
}
