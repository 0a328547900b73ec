package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClosedTrade append-only record of a completed (or partially closed) trade.
type ClosedTrade struct {
	ID          string          `json:"id"`
	Pair        Pair            `json:"pair"`
	Side        PositionSide    `json:"side"`
	Size        decimal.Decimal `json:"size"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	ExitPrice   decimal.Decimal `json:"exit_price"`
	ExitReason  ExitReason      `json:"exit_reason"`
	RealizedPnl decimal.Decimal `json:"realized_pnl"`
	Partial     bool            `json:"partial"`
	EntryTime   time.Time       `json:"entry_time"`
	ExitTime    time.Time       `json:"exit_time"`
}

// String returns a human-readable summary.
func (t *ClosedTrade) String() string {
	return fmt.Sprintf("%s %s %s@%s -> %s (%s) pnl=%s",
		t.Pair.String(), t.Side.String(), t.Size.String(),
		t.EntryPrice.String(), t.ExitPrice.String(), t.ExitReason, t.RealizedPnl.String())
}

// AccountStats lifetime trading statistics, accumulate-only.
type AccountStats struct {
	TotalPnl   decimal.Decimal `json:"total_pnl"`
	TradeCount int             `json:"trade_count"`
	Wins       int             `json:"wins"`
	Losses     int             `json:"losses"`
}
