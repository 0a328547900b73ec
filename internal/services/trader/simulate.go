package trader

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// SimulatedOrder records one submitted order.
type SimulatedOrder struct {
	Action        domain.Action
	Amount        decimal.Decimal
	ClientOrderID string
}

// SimulateTrader accepts every order without touching an exchange.
// Used for dry runs and tests; rejections can be scripted.
type SimulateTrader struct {
	mu         sync.Mutex
	orders     []SimulatedOrder
	rejectNext int
}

// NewSimulateTrader returns an empty simulated trader.
func NewSimulateTrader() *SimulateTrader {
	return &SimulateTrader{}
}

// RejectNext makes the next n submissions fail.
func (t *SimulateTrader) RejectNext(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rejectNext = n
}

// SubmitMarketOrder records the order, or fails if a rejection is scripted.
func (t *SimulateTrader) SubmitMarketOrder(_ context.Context, action domain.Action, amount decimal.Decimal, clientOrderID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rejectNext > 0 {
		t.rejectNext--
		return errors.New("simulated order rejection")
	}

	t.orders = append(t.orders, SimulatedOrder{
		Action:        action,
		Amount:        amount,
		ClientOrderID: clientOrderID,
	})
	return nil
}

// Orders returns a copy of all accepted orders.
func (t *SimulateTrader) Orders() []SimulatedOrder {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]SimulatedOrder, len(t.orders))
	copy(out, t.orders)
	return out
}
