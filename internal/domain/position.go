package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PositionSide represents the direction of a trading position.
type PositionSide int

const (
	// PositionSideLong represents a long position (buy to open).
	PositionSideLong PositionSide = iota
	// PositionSideShort represents a short position (sell to open).
	PositionSideShort
)

// String returns the string representation of the side.
func (s PositionSide) String() string {
	if s == PositionSideShort {
		return "short"
	}
	return "long"
}

// CloseAction returns the order action that closes a position on this side.
func (s PositionSide) CloseAction() Action {
	if s == PositionSideShort {
		return ActionCloseShort
	}
	return ActionCloseLong
}

// ExitReason names the condition that closed a position.
type ExitReason string

const (
	ExitReasonManualClose  ExitReason = "Manual Close"
	ExitReasonCustomTP     ExitReason = "Custom TP"
	ExitReasonStopLoss     ExitReason = "Stop Loss"
	ExitReasonTakeProfit2  ExitReason = "Take Profit 2"
	ExitReasonTrailingStop ExitReason = "Trailing Stop"
)

// RiskParams exit-level parameters applied at position entry.
type RiskParams struct {
	// StopLossPct fraction of the entry price risked before the stop fires.
	StopLossPct decimal.Decimal
	// TakeProfit1Factor ATR multiple for the breakeven-arming target.
	TakeProfit1Factor decimal.Decimal
	// TakeProfit2FactorLow ATR multiple for the final target in calm markets.
	TakeProfit2FactorLow decimal.Decimal
	// TakeProfit2FactorHigh ATR multiple used when entry ATR >= its rolling mean.
	TakeProfit2FactorHigh decimal.Decimal
	// TrailingFactor ATR multiple for the trailing stop computed at entry.
	TrailingFactor decimal.Decimal
}

// DefaultRiskParams returns the stock risk configuration.
func DefaultRiskParams() RiskParams {
	return RiskParams{
		StopLossPct:           decimal.NewFromFloat(0.025),
		TakeProfit1Factor:     decimal.NewFromFloat(1.5),
		TakeProfit2FactorLow:  decimal.NewFromFloat(2.0),
		TakeProfit2FactorHigh: decimal.NewFromFloat(2.8),
		TrailingFactor:        decimal.NewFromFloat(1.8),
	}
}

// Position an open trading position. Exactly one live Position per account.
//
// StopLoss is the only level that moves after entry: breakeven arming lifts
// it to the entry price once TakeProfit1 is reached. The trailing stop is
// computed once at entry and never re-trails afterwards; that mirrors the
// behavior this bot always had and the lifecycle tests pin it.
type Position struct {
	Side           PositionSide    `json:"side"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	Size           decimal.Decimal `json:"size"`
	EntryTime      time.Time       `json:"entry_time"`
	EntryATR       decimal.Decimal `json:"entry_atr"`
	StopLoss       decimal.Decimal `json:"stop_loss"`
	TakeProfit1    decimal.Decimal `json:"take_profit_1"`
	TakeProfit2    decimal.Decimal `json:"take_profit_2"`
	TrailingStop   decimal.Decimal `json:"trailing_stop"`
	BreakevenArmed bool            `json:"breakeven_armed"`
}

// NewPosition constructs a position with all exit levels derived from the
// entry price and the fast-timeframe ATR at entry.
//
// The TakeProfit2 multiple adapts to volatility: when entry ATR is at or
// above its rolling mean the wider TakeProfit2FactorHigh is used.
func NewPosition(side PositionSide, entryPrice, size, entryATR, atrMean decimal.Decimal, entryTime time.Time, risk RiskParams) (*Position, error) {
	if size.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("position size must be greater than zero")
	}
	if entryPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("entry price must be greater than zero")
	}

	tp2Factor := risk.TakeProfit2FactorLow
	if entryATR.GreaterThanOrEqual(atrMean) {
		tp2Factor = risk.TakeProfit2FactorHigh
	}

	slDelta := entryPrice.Mul(risk.StopLossPct)
	tp1Delta := entryATR.Mul(risk.TakeProfit1Factor)
	tp2Delta := entryATR.Mul(tp2Factor)
	trailDelta := entryATR.Mul(risk.TrailingFactor)

	p := &Position{
		Side:       side,
		EntryPrice: entryPrice,
		Size:       size,
		EntryTime:  entryTime,
		EntryATR:   entryATR,
	}

	if side == PositionSideLong {
		p.StopLoss = entryPrice.Sub(slDelta)
		p.TakeProfit1 = entryPrice.Add(tp1Delta)
		p.TakeProfit2 = entryPrice.Add(tp2Delta)
		p.TrailingStop = entryPrice.Sub(trailDelta)
	} else {
		p.StopLoss = entryPrice.Add(slDelta)
		p.TakeProfit1 = entryPrice.Sub(tp1Delta)
		p.TakeProfit2 = entryPrice.Sub(tp2Delta)
		p.TrailingStop = entryPrice.Add(trailDelta)
	}

	return p, nil
}

// ArmBreakeven tightens the stop to the entry price. Returns false when
// breakeven was already armed; the stop never loosens again afterwards.
func (p *Position) ArmBreakeven() bool {
	if p == nil || p.BreakevenArmed {
		return false
	}
	p.StopLoss = p.EntryPrice
	p.BreakevenArmed = true
	return true
}

// ReachedTarget reports whether price has reached a profit target.
func (p *Position) ReachedTarget(price, target decimal.Decimal) bool {
	if p.Side == PositionSideLong {
		return price.GreaterThanOrEqual(target)
	}
	return price.LessThanOrEqual(target)
}

// BreachedStop reports whether price has breached a protective stop level.
func (p *Position) BreachedStop(price, stop decimal.Decimal) bool {
	if p.Side == PositionSideLong {
		return price.LessThanOrEqual(stop)
	}
	return price.GreaterThanOrEqual(stop)
}

// PnL calculates unrealized profit and loss for the given market price.
func (p *Position) PnL(currentPrice decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if p.Side == PositionSideShort {
		return p.EntryPrice.Sub(currentPrice).Mul(p.Size)
	}
	return currentPrice.Sub(p.EntryPrice).Mul(p.Size)
}
