package internal

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Registry tracks running bots by account id so operator commands (manual
// close, custom take-profit, status) can reach them.
type Registry struct {
	mu   sync.RWMutex
	bots map[string]*TradingBot
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bots: make(map[string]*TradingBot)}
}

// Add registers a bot. Duplicate account ids are rejected.
func (r *Registry) Add(accountID string, bot *TradingBot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bots[accountID]; exists {
		return errors.Errorf("account %s already registered", accountID)
	}
	r.bots[accountID] = bot
	return nil
}

// ManualClose flags the account's position for closing on the next tick.
func (r *Registry) ManualClose(accountID string) error {
	bot, err := r.get(accountID)
	if err != nil {
		return err
	}
	if !bot.Manager().RequestManualClose() {
		return errors.Errorf("account %s has no open position", accountID)
	}
	return nil
}

// SetCustomTakeProfit installs a custom exit target on the open position.
func (r *Registry) SetCustomTakeProfit(accountID string, price decimal.Decimal) error {
	bot, err := r.get(accountID)
	if err != nil {
		return err
	}
	return bot.Manager().SetCustomTakeProfit(price)
}

// Status returns a one-line summary per registered account.
func (r *Registry) Status() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]string, 0, len(r.bots))
	for _, bot := range r.bots {
		lines = append(lines, bot.Status())
	}
	return lines
}

func (r *Registry) get(accountID string) (*TradingBot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bot, ok := r.bots[accountID]
	if !ok {
		return nil, errors.Errorf("unknown account %s", accountID)
	}
	return bot, nil
}
