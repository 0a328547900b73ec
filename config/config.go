// Package config loads per-account bot configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

// Defaults mirror the stock configuration the bot ships with.
const (
	DefaultPlatform       = "binance"
	DefaultStrategy       = "scorecard"
	DefaultSlowInterval   = "4h"
	DefaultFastInterval   = "15m"
	DefaultSlowLimit      = 400
	DefaultFastLimit      = 100
	DefaultTickInterval   = 10 * time.Second
	DefaultCandleInterval = 60 * time.Second
)

// Config is the resolved configuration of one trading account.
type Config struct {
	AccountID string
	Platform  string
	Pair      domain.Pair
	Strategy  string

	TradeSize    decimal.Decimal
	Leverage     decimal.Decimal
	LotSize      decimal.Decimal
	SlippageRate decimal.Decimal
	FeeRate      decimal.Decimal
	ProfitCut    decimal.Decimal

	Risk domain.RiskParams

	SlowInterval   string
	FastInterval   string
	SlowLimit      int
	FastLimit      int
	TickInterval   time.Duration
	CandleInterval time.Duration

	WALDir      string
	JournalPath string
}

type configTmp struct {
	AccountID string `yaml:"account_id"`
	Platform  string `yaml:"platform"`
	Pair      string `yaml:"pair"`
	Strategy  string `yaml:"strategy,omitempty"`

	TradeSize    string `yaml:"trade_size,omitempty"`
	Leverage     string `yaml:"leverage,omitempty"`
	LotSize      string `yaml:"lot_size,omitempty"`
	SlippageRate string `yaml:"slippage_rate,omitempty"`
	FeeRate      string `yaml:"fee_rate,omitempty"`
	ProfitCut    string `yaml:"profit_cut,omitempty"`

	StopLossPct    string `yaml:"stop_loss_pct,omitempty"`
	TrailingFactor string `yaml:"trailing_factor,omitempty"`

	SlowInterval   string        `yaml:"slow_interval,omitempty"`
	FastInterval   string        `yaml:"fast_interval,omitempty"`
	TickInterval   time.Duration `yaml:"tick_interval,omitempty"`
	CandleInterval time.Duration `yaml:"candle_interval,omitempty"`

	WALDir      string `yaml:"wal_dir,omitempty"`
	JournalPath string `yaml:"journal_path,omitempty"`
}

// Load parses the YAML config at path into one Config per account.
func Load(path string) ([]Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmps []configTmp
	if err := yaml.Unmarshal(f, &tmps); err != nil {
		return nil, err
	}
	if len(tmps) == 0 {
		return nil, fmt.Errorf("config %s contains no accounts", path)
	}

	configs := make([]Config, 0, len(tmps))
	for i, tmp := range tmps {
		c, err := tmp.resolve()
		if err != nil {
			return nil, fmt.Errorf("account #%d: %w", i+1, err)
		}
		configs = append(configs, c)
	}
	return configs, nil
}

func (t configTmp) resolve() (Config, error) {
	pair, err := pairFromString(t.Pair)
	if err != nil {
		return Config{}, err
	}

	c := Config{
		AccountID:      t.AccountID,
		Platform:       strings.ToLower(t.Platform),
		Pair:           pair,
		Strategy:       t.Strategy,
		Risk:           domain.DefaultRiskParams(),
		SlowInterval:   t.SlowInterval,
		FastInterval:   t.FastInterval,
		SlowLimit:      DefaultSlowLimit,
		FastLimit:      DefaultFastLimit,
		TickInterval:   t.TickInterval,
		CandleInterval: t.CandleInterval,
		WALDir:         t.WALDir,
		JournalPath:    t.JournalPath,
	}

	if c.AccountID == "" {
		return Config{}, fmt.Errorf("'account_id' is required")
	}
	if c.Platform == "" {
		c.Platform = DefaultPlatform
	}
	if c.Strategy == "" {
		c.Strategy = DefaultStrategy
	}
	if c.SlowInterval == "" {
		c.SlowInterval = DefaultSlowInterval
	}
	if c.FastInterval == "" {
		c.FastInterval = DefaultFastInterval
	}
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.CandleInterval == 0 {
		c.CandleInterval = DefaultCandleInterval
	}
	if c.JournalPath == "" {
		c.JournalPath = "./trades.db"
	}

	if c.TradeSize, err = decimalOrDefault(t.TradeSize, "50", "trade_size"); err != nil {
		return Config{}, err
	}
	if c.Leverage, err = decimalOrDefault(t.Leverage, "5", "leverage"); err != nil {
		return Config{}, err
	}
	if c.LotSize, err = decimalOrDefault(t.LotSize, "0.1", "lot_size"); err != nil {
		return Config{}, err
	}
	if c.SlippageRate, err = decimalOrDefault(t.SlippageRate, "0.002", "slippage_rate"); err != nil {
		return Config{}, err
	}
	if c.FeeRate, err = decimalOrDefault(t.FeeRate, "0.00075", "fee_rate"); err != nil {
		return Config{}, err
	}
	if c.ProfitCut, err = decimalOrDefault(t.ProfitCut, "0", "profit_cut"); err != nil {
		return Config{}, err
	}

	if t.StopLossPct != "" {
		if c.Risk.StopLossPct, err = decimal.NewFromString(t.StopLossPct); err != nil {
			return Config{}, fmt.Errorf("incorrect 'stop_loss_pct' param: %w", err)
		}
	}
	if t.TrailingFactor != "" {
		if c.Risk.TrailingFactor, err = decimal.NewFromString(t.TrailingFactor); err != nil {
			return Config{}, fmt.Errorf("incorrect 'trailing_factor' param: %w", err)
		}
	}

	if c.TradeSize.LessThanOrEqual(decimal.Zero) {
		return Config{}, fmt.Errorf("'trade_size' must be greater than zero")
	}
	if c.LotSize.LessThanOrEqual(decimal.Zero) {
		return Config{}, fmt.Errorf("'lot_size' must be greater than zero")
	}

	return c, nil
}

func decimalOrDefault(raw, fallback, name string) (decimal.Decimal, error) {
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("incorrect '%s' param in yaml config: %w", name, err)
	}
	return d, nil
}

func pairFromString(pairStr string) (domain.Pair, error) {
	parts := strings.Split(pairStr, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Pair{}, fmt.Errorf("invalid 'pair' param %q, expected format BTC_USDT", pairStr)
	}
	return domain.Pair{From: parts[0], To: parts[1]}, nil
}
