package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the engine collectors. Each instance owns its registry so
// several engines (or tests) never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	OrdersSubmitted     *prometheus.CounterVec
	OrdersRejected      *prometheus.CounterVec
	Trades              prometheus.Counter
	TradedQuantity      prometheus.Counter
	TradedNotional      prometheus.Counter
	ArbitrageSignals    *prometheus.CounterVec
	ArbitrageProfit     prometheus.Histogram
	PersistenceFailures prometheus.Counter
	SignalsDropped      prometheus.Counter
	MatchLatency        prometheus.Histogram
	RestingOrders       prometheus.Gauge
}

func New(symbol string) *Metrics {
	labels := prometheus.Labels{"symbol": symbol}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "matcher_orders_submitted_total",
			Help:        "Accepted limit orders by side.",
			ConstLabels: labels,
		}, []string{"side"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "matcher_orders_rejected_total",
			Help:        "Submissions rejected by validation, by field.",
			ConstLabels: labels,
		}, []string{"field"}),
		Trades: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "matcher_trades_total",
			Help:        "Executed trades.",
			ConstLabels: labels,
		}),
		TradedQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "matcher_traded_quantity_total",
			Help:        "Executed quantity.",
			ConstLabels: labels,
		}),
		TradedNotional: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "matcher_traded_notional_total",
			Help:        "Executed price times quantity, in quote currency.",
			ConstLabels: labels,
		}),
		ArbitrageSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "matcher_arbitrage_signals_total",
			Help:        "Pre-trade arbitrage signals by incoming side.",
			ConstLabels: labels,
		}, []string{"side"}),
		ArbitrageProfit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "matcher_arbitrage_profit",
			Help:        "Per-unit price improvement of signalled orders, in quote currency.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 12),
		}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "matcher_trade_persistence_failures_total",
			Help:        "Trades executed but not durably recorded.",
			ConstLabels: labels,
		}),
		SignalsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "matcher_signals_dropped_total",
			Help:        "Signals dropped by a full publisher buffer.",
			ConstLabels: labels,
		}),
		MatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "matcher_match_latency_seconds",
			Help:        "Time spent holding the book lock per submission.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.000005, 2, 16),
		}),
		RestingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "matcher_resting_orders",
			Help:        "Orders currently resting in the book.",
			ConstLabels: labels,
		}),
	}
	m.Registry.MustRegister(
		m.OrdersSubmitted,
		m.OrdersRejected,
		m.Trades,
		m.TradedQuantity,
		m.TradedNotional,
		m.ArbitrageSignals,
		m.ArbitrageProfit,
		m.PersistenceFailures,
		m.SignalsDropped,
		m.MatchLatency,
		m.RestingOrders,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
