// Package metrics exposes Prometheus counters and gauges for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SignalsTotal counts entry signals by direction.
	SignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_signals_total",
		Help: "Entry signals emitted, by direction.",
	}, []string{"direction"})

	// TradesClosedTotal counts closed trades by exit reason.
	TradesClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_trades_closed_total",
		Help: "Closed trades, by exit reason.",
	}, []string{"reason"})

	// OpenPositions tracks the number of open positions per account.
	OpenPositions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bot_open_positions",
		Help: "Open positions per account (0 or 1).",
	}, []string{"account"})

	// TotalPnl tracks lifetime realized pnl per account.
	TotalPnl = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bot_total_pnl",
		Help: "Lifetime realized pnl per account, in quote currency.",
	}, []string{"account"})

	// OrderFailures counts order submissions the exchange rejected.
	OrderFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_order_failures_total",
		Help: "Order submissions rejected by the exchange, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(SignalsTotal, TradesClosedTotal, OpenPositions, TotalPnl, OrderFailures)
}
