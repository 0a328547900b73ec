// Package setup provides the interactive configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// accountYAML mirrors the on-disk config shape the wizard generates.
type accountYAML struct {
	AccountID    string `yaml:"account_id"`
	Platform     string `yaml:"platform"`
	Pair         string `yaml:"pair"`
	Strategy     string `yaml:"strategy"`
	TradeSize    string `yaml:"trade_size"`
	Leverage     string `yaml:"leverage"`
	LotSize      string `yaml:"lot_size"`
	StopLossPct  string `yaml:"stop_loss_pct,omitempty"`
	TickInterval string `yaml:"tick_interval,omitempty"`
}

// RunTUI launches the terminal configuration wizard and writes the result
// to config.gen.yaml.
func RunTUI() error {
	var (
		accountID string
		platform  string
		pair      string
		strategy  string
		confirm   bool
	)

	tradeSize := "50"
	leverage := "5"
	lotSize := "0.1"
	stopLossPct := "0.025"
	tickInterval := "10s"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GOODBOYTRADER CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your bot automated in style.\n"))

	fmt.Println(stepStyle.Render("STEP 1: ACCOUNT"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Account ID").
				Description("Unique label for this account (e.g. main)").
				Value(&accountID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("account id cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GOODBOYTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: PLATFORM"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance Futures", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Simulation", "simulate"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GOODBOYTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: ASSET"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("Must contain underscore (e.g. SOL_USDT)").
				Value(&pair).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("pair cannot be empty")
					}
					if !strings.Contains(s, "_") {
						return fmt.Errorf("invalid format: must be BASE_QUOTE (e.g. SOL_USDT)")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GOODBOYTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: STRATEGY"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose your entry strategy").
				Options(
					huh.NewOption("Scorecard (point-scored EMA crossover)", "scorecard"),
					huh.NewOption("Gated (strict trend + RSI/ADX gates)", "gated"),
				).
				Value(&strategy),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GOODBOYTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 5: SIZING & RISK"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trade Size (quote currency)").
				Description("Notional per entry, e.g. 50").
				Value(&tradeSize).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Leverage").
				Value(&leverage).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Lot Size").
				Description("Instrument quantity step, e.g. 0.1").
				Value(&lotSize).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Stop Loss fraction").
				Description("e.g. 0.025 for 2.5%").
				Value(&stopLossPct).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Tick Interval").
				Description("Duration string (e.g. 10s)").
				Value(&tickInterval).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GOODBOYTRADER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Account: %s\nPlatform: %s\nPair: %s\nStrategy: %s\nTrade Size: %s\nLeverage: %sx\n",
		accountID, platform, pair, strategy, tradeSize, leverage,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	accounts := []accountYAML{{
		AccountID:    accountID,
		Platform:     platform,
		Pair:         pair,
		Strategy:     strategy,
		TradeSize:    tradeSize,
		Leverage:     leverage,
		LotSize:      lotSize,
		StopLossPct:  stopLossPct,
		TickInterval: tickInterval,
	}}

	data, err := yaml.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s", filename)))
	return nil
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
