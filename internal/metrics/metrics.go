// Package metrics exposes Prometheus counters for the trading service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TradesExecuted counts committed trades by side.
	TradesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gopaper_trades_executed_total",
		Help: "Number of trades committed to the ledger",
	}, []string{"side"})

	// TradesRejected counts rejected trades by reason code.
	TradesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gopaper_trades_rejected_total",
		Help: "Number of trades rejected before any state change",
	}, []string{"reason"})

	// QuoteFailures counts oracle lookups that came back unavailable.
	QuoteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gopaper_quote_failures_total",
		Help: "Number of price lookups that returned unavailable",
	})
)
