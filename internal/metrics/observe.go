package metrics

import (
	"time"

	"github.com/olyamironova/mev-matcher/internal/domain"
)

// The Observe helpers are no-ops on a nil *Metrics.

func (m *Metrics) ObserveAccepted(side domain.Side) {
	if m == nil {
		return
	}
	m.OrdersSubmitted.WithLabelValues(string(side)).Inc()
}

func (m *Metrics) ObserveRejected(field string) {
	if m == nil {
		return
	}
	m.OrdersRejected.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveTrades(trades []*domain.Trade) {
	if m == nil {
		return
	}
	for _, t := range trades {
		m.Trades.Inc()
		m.TradedQuantity.Add(t.Quantity.InexactFloat64())
		m.TradedNotional.Add(t.Notional().InexactFloat64())
	}
}

func (m *Metrics) ObserveSignal(side domain.Side) {
	if m == nil {
		return
	}
	m.ArbitrageSignals.WithLabelValues(string(side)).Inc()
}

func (m *Metrics) ObservePersistenceFailure() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

func (m *Metrics) ObserveSignalDropped() {
	if m == nil {
		return
	}
	m.SignalsDropped.Inc()
}

func (m *Metrics) ObserveMatch(d time.Duration, resting int) {
	if m == nil {
		return
	}
	m.MatchLatency.Observe(d.Seconds())
	m.RestingOrders.Set(float64(resting))
}

func (m *Metrics) ObserveProfit(sig domain.ArbitrageSignal) {
	if m == nil {
		return
	}
	m.ArbitrageProfit.Observe(sig.Profit.InexactFloat64())
}
