package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/metrics"
	"github.com/olyamironova/mev-matcher/internal/port"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var _ port.SignalSink = (*Publisher)(nil)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher ships arbitrage signals to a Kafka topic, keyed by symbol.
// Emit only enqueues; a full buffer drops the signal and counts it.
type Publisher struct {
	w       messageWriter
	log     *zap.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	queue  chan domain.ArbitrageSignal
	done   chan struct{}
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func NewPublisher(w messageWriter, buffer int, log *zap.Logger, m *metrics.Metrics) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Publisher{
		w:       w,
		log:     log.Named("kafka"),
		metrics: m,
		queue:   make(chan domain.ArbitrageSignal, buffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) Emit(_ context.Context, sig domain.ArbitrageSignal) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- sig:
	default:
		p.metrics.ObserveSignalDropped()
		p.log.Warn("signal buffer full, dropping", zap.String("order_id", sig.OrderID))
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for sig := range p.queue {
		value, err := json.Marshal(sig)
		if err != nil {
			p.log.Error("failed to encode signal", zap.String("order_id", sig.OrderID), zap.Error(err))
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err = p.w.WriteMessages(ctx, kafkago.Message{
			Key:   []byte(sig.Symbol),
			Value: value,
			Time:  sig.DetectedAt,
		})
		cancel()
		if err != nil {
			p.log.Error("failed to publish signal", zap.String("order_id", sig.OrderID), zap.Error(err))
		}
	}
}

// Close drains queued signals and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.w.Close()
}
