// Package collector provides market data collection utilities.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// ErrUnavailable marks transient market-data failures. Callers skip the
// current cycle and retry after the poll interval instead of crashing.
var ErrUnavailable = errors.New("market data unavailable")

// KlineProvider fetches an ordered (ascending by open time) candle series.
type KlineProvider interface {
	GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.MarketCandle, error)
}

type cacheEntry struct {
	candles   []domain.MarketCandle
	fetchedAt time.Time
}

// CachedKlines caches candle fetches per (pair, interval, limit) so several
// accounts tracking one instrument share a single rate-limited API call.
// Accounts still evaluate independently against their own state.
type CachedKlines struct {
	provider KlineProvider
	ttl      time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCachedKlines wraps a provider with a TTL cache.
func NewCachedKlines(provider KlineProvider, ttl time.Duration) *CachedKlines {
	return &CachedKlines{
		provider: provider,
		ttl:      ttl,
		cache:    make(map[string]cacheEntry),
	}
}

// GetKlines returns the cached series when fresh, fetching otherwise.
func (c *CachedKlines) GetKlines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.MarketCandle, error) {
	key := fmt.Sprintf("%s/%s/%d", pair.Symbol(), interval, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[key]; ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.candles, nil
	}

	candles, err := c.provider.GetKlines(ctx, pair, interval, limit)
	if err != nil {
		return nil, err
	}

	c.cache[key] = cacheEntry{candles: candles, fetchedAt: time.Now()}
	return candles, nil
}
