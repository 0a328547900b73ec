package collector

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) GetKlines(context.Context, domain.Pair, string, int) ([]domain.MarketCandle, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []domain.MarketCandle{{Close: decimal.NewFromInt(100)}}, nil
}

func TestCachedKlinesServesFromCacheWithinTTL(t *testing.T) {
	provider := &countingProvider{}
	cached := NewCachedKlines(provider, time.Minute)
	pair := domain.Pair{From: "SOL", To: "USDT"}

	for i := 0; i < 5; i++ {
		candles, err := cached.GetKlines(context.Background(), pair, "15m", 100)
		require.NoError(t, err)
		require.Len(t, candles, 1)
	}

	require.Equal(t, 1, provider.calls, "repeated fetches within TTL hit the cache")
}

func TestCachedKlinesKeySeparatesIntervals(t *testing.T) {
	provider := &countingProvider{}
	cached := NewCachedKlines(provider, time.Minute)
	pair := domain.Pair{From: "SOL", To: "USDT"}

	_, err := cached.GetKlines(context.Background(), pair, "15m", 100)
	require.NoError(t, err)
	_, err = cached.GetKlines(context.Background(), pair, "4h", 400)
	require.NoError(t, err)

	require.Equal(t, 2, provider.calls)
}

func TestCachedKlinesExpires(t *testing.T) {
	provider := &countingProvider{}
	cached := NewCachedKlines(provider, time.Millisecond)
	pair := domain.Pair{From: "SOL", To: "USDT"}

	_, err := cached.GetKlines(context.Background(), pair, "15m", 100)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = cached.GetKlines(context.Background(), pair, "15m", 100)
	require.NoError(t, err)
	require.Equal(t, 2, provider.calls)
}

func TestCachedKlinesDoesNotCacheErrors(t *testing.T) {
	provider := &countingProvider{err: errors.Wrap(ErrUnavailable, "exchange down")}
	cached := NewCachedKlines(provider, time.Minute)
	pair := domain.Pair{From: "SOL", To: "USDT"}

	_, err := cached.GetKlines(context.Background(), pair, "15m", 100)
	require.ErrorIs(t, err, ErrUnavailable)

	provider.err = nil
	_, err = cached.GetKlines(context.Background(), pair, "15m", 100)
	require.NoError(t, err)
	require.Equal(t, 2, provider.calls)
}
