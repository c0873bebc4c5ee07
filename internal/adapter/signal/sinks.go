package signal

import (
	"context"

	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/metrics"
	"github.com/olyamironova/mev-matcher/internal/port"
	"go.uber.org/zap"
)

var (
	_ port.SignalSink = (*LogSink)(nil)
	_ port.SignalSink = (*MetricsSink)(nil)
	_ port.SignalSink = Multi(nil)
)

// LogSink writes every signal as a warning.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(_ context.Context, sig domain.ArbitrageSignal) {
	s.log.Warn("arbitrage opportunity",
		zap.String("order_id", sig.OrderID),
		zap.String("side", string(sig.Side)),
		zap.Stringer("buy_price", sig.BuyPrice()),
		zap.Stringer("sell_price", sig.SellPrice()),
		zap.Stringer("profit", sig.Profit))
}

// MetricsSink records the profit distribution of signals.
type MetricsSink struct {
	m *metrics.Metrics
}

func NewMetricsSink(m *metrics.Metrics) *MetricsSink {
	return &MetricsSink{m: m}
}

func (s *MetricsSink) Emit(_ context.Context, sig domain.ArbitrageSignal) {
	s.m.ObserveProfit(sig)
}

// Multi fans a signal out to every sink in order.
type Multi []port.SignalSink

func (m Multi) Emit(ctx context.Context, sig domain.ArbitrageSignal) {
	for _, s := range m {
		s.Emit(ctx, sig)
	}
}
