package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

const (
	binanceFuturesWSBase = "wss://fstream.binance.com/ws"
	streamReconnectWait  = 5 * time.Second
)

// PriceStream keeps the latest mark price pushed over the Binance futures
// websocket, as a lower-latency alternative to REST polling. The trading
// loop still drives ticks at its own interval; the stream only replaces the
// per-tick REST price fetch.
type PriceStream struct {
	url string
	l   *zap.Logger

	mu        sync.RWMutex
	lastPrice decimal.Decimal
	hasPrice  bool
}

// NewBinancePriceStream builds a mark-price stream for the pair.
func NewBinancePriceStream(pair domain.Pair, l *zap.Logger) *PriceStream {
	symbol := strings.ToLower(pair.Symbol())
	return &PriceStream{
		url: fmt.Sprintf("%s/%s@markPrice@1s", binanceFuturesWSBase, symbol),
		l:   l,
	}
}

// Run connects and reads price updates until the context is cancelled,
// reconnecting after transient failures.
func (s *PriceStream) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.l.Warn("price stream dial failed", zap.String("url", s.url), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(streamReconnectWait):
			}
			continue
		}

		s.readLoop(ctx, conn)
		conn.Close()
	}
}

func (s *PriceStream) readLoop(ctx context.Context, conn *websocket.Conn) {
	// unblock ReadMessage when the context is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.l.Warn("price stream read failed, reconnecting", zap.Error(err))
			}
			return
		}

		var update struct {
			MarkPrice string `json:"p"`
		}
		if err := json.Unmarshal(message, &update); err != nil || update.MarkPrice == "" {
			continue
		}

		price, err := decimal.NewFromString(update.MarkPrice)
		if err != nil {
			continue
		}

		s.mu.Lock()
		s.lastPrice = price
		s.hasPrice = true
		s.mu.Unlock()
	}
}

// LastPrice returns the most recent streamed price, ok=false before the
// first update arrives.
func (s *PriceStream) LastPrice() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPrice, s.hasPrice
}
