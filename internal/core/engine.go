package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/metrics"
	"github.com/olyamironova/mev-matcher/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrEngineClosed = errors.New("engine closed")

const (
	defaultSnapshotDepth  = 50
	defaultOrderRetention = 100_000
)

// Engine is the only writer of its OrderBook. One mutex covers the whole
// detect-match-mutate sequence of a submission; persistence and cache
// publication run after it is released.
type Engine struct {
	symbol        string
	store         port.TradeStore
	cache         port.Cache
	sink          port.SignalSink
	log           *zap.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	snapshotDepth int
	retention     int

	mu       sync.Mutex
	book     *OrderBook
	orders   map[string]*domain.Order
	terminal []string
	seq      uint64
	tradeSeq uint64
	closed   bool

	// pubMu orders cache writes; a snapshot older than lastPublished is dropped.
	pubMu         sync.Mutex
	lastPublished uint64
}

type Option func(*Engine)

func WithTradeStore(s port.TradeStore) Option { return func(e *Engine) { e.store = s } }
func WithCache(c port.Cache) Option            { return func(e *Engine) { e.cache = c } }
func WithSignalSink(s port.SignalSink) Option  { return func(e *Engine) { e.sink = s } }
func WithLogger(l *zap.Logger) Option          { return func(e *Engine) { e.log = l } }
func WithMetrics(m *metrics.Metrics) Option    { return func(e *Engine) { e.metrics = m } }
func WithClock(now func() time.Time) Option    { return func(e *Engine) { e.now = now } }

// WithSnapshotDepth sets how many levels per side are published to the cache.
func WithSnapshotDepth(n int) Option { return func(e *Engine) { e.snapshotDepth = n } }

// WithOrderRetention bounds how many filled orders stay queryable through
// GetOrder. Resting orders are always kept. Zero keeps everything.
func WithOrderRetention(n int) Option { return func(e *Engine) { e.retention = n } }

func NewEngine(symbol string, opts ...Option) *Engine {
	e := &Engine{
		symbol:        symbol,
		log:           zap.NewNop(),
		now:           time.Now,
		snapshotDepth: defaultSnapshotDepth,
		retention:     defaultOrderRetention,
		book:          NewOrderBook(symbol),
		orders:        make(map[string]*domain.Order),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("symbol", symbol))
	return e
}

func (e *Engine) Symbol() string { return e.symbol }

// SubmitResult is the outcome of one accepted submission. Order is the
// state of the incoming order when the book lock was released. A non-nil
// PersistErr means the trades executed but were not all recorded.
type SubmitResult struct {
	Order      domain.Order
	Trades     []*domain.Trade
	Signal     *domain.ArbitrageSignal
	PersistErr error
}

func (r *SubmitResult) Degraded() bool {
	return r.PersistErr != nil
}

// Submit validates req, matches it against the book and records the
// resulting trades. Validation failures return a *domain.ValidationError
// and leave the book untouched.
func (e *Engine) Submit(ctx context.Context, req domain.OrderRequest) (*SubmitResult, error) {
	if err := req.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			e.metrics.ObserveRejected(ve.Field)
		}
		return nil, err
	}

	res, snap, err := e.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	// The match already happened; a failed write is reported, not undone.
	res.PersistErr = e.persist(context.WithoutCancel(ctx), res.Trades)
	e.publish(context.WithoutCancel(ctx), snap)
	return res, nil
}

func (e *Engine) execute(ctx context.Context, req domain.OrderRequest) (*SubmitResult, *domain.BookSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, nil, ErrEngineClosed
	}

	start := time.Now()
	now := e.now()
	e.seq++
	o := &domain.Order{
		ID:        uuid.NewString(),
		ClientID:  req.ClientID,
		Symbol:    e.symbol,
		Side:      req.Side,
		Type:      req.Type,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Remaining: req.Quantity,
		Seq:       e.seq,
		Status:    domain.Open,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.orders[o.ID] = o
	e.metrics.ObserveAccepted(o.Side)
	e.log.Debug("order accepted",
		zap.String("order_id", o.ID),
		zap.Uint64("seq", o.Seq),
		zap.String("side", string(o.Side)),
		zap.Stringer("price", o.Price),
		zap.Stringer("quantity", o.Quantity))

	sig := Detect(e.book, o)
	if sig != nil {
		sig.DetectedAt = now
		e.metrics.ObserveSignal(sig.Side)
		if e.sink != nil {
			e.sink.Emit(ctx, *sig)
		}
	}

	trades := Match(e.book, o, now)
	if e.book.Crossed() {
		bid, _ := e.book.BestBid()
		ask, _ := e.book.BestAsk()
		panic(fmt.Sprintf("engine %s: book crossed after order %s: bid %s >= ask %s", e.symbol, o.ID, bid, ask))
	}

	for _, t := range trades {
		e.tradeSeq++
		t.Seq = e.tradeSeq
		if maker := e.orders[t.MakerOrderID]; maker != nil && maker.IsTerminal() {
			e.retireLocked(maker.ID)
		}
		e.log.Info("trade executed",
			zap.String("trade_id", t.ID),
			zap.String("maker_order_id", t.MakerOrderID),
			zap.String("taker_order_id", t.TakerOrderID),
			zap.Stringer("price", t.Price),
			zap.Stringer("quantity", t.Quantity))
	}
	if o.IsTerminal() {
		e.retireLocked(o.ID)
	}
	e.metrics.ObserveTrades(trades)

	var snap *domain.BookSnapshot
	if e.cache != nil {
		snap = e.snapshotLocked(e.snapshotDepth)
	}
	e.metrics.ObserveMatch(time.Since(start), e.book.Len())

	return &SubmitResult{Order: *o, Trades: trades, Signal: sig}, snap, nil
}

// retireLocked queues a filled order for eviction and drops the oldest ones
// beyond the retention limit.
func (e *Engine) retireLocked(orderID string) {
	if e.retention <= 0 {
		return
	}
	e.terminal = append(e.terminal, orderID)
	for len(e.terminal) > e.retention {
		delete(e.orders, e.terminal[0])
		e.terminal[0] = ""
		e.terminal = e.terminal[1:]
	}
}

func (e *Engine) persist(ctx context.Context, trades []*domain.Trade) error {
	if e.store == nil || len(trades) == 0 {
		return nil
	}
	var errs []error
	for _, t := range trades {
		if err := e.store.SaveTrade(ctx, t); err != nil {
			e.metrics.ObservePersistenceFailure()
			e.log.Error("failed to persist trade",
				zap.String("trade_id", t.ID),
				zap.String("taker_order_id", t.TakerOrderID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("trade %s: %w", t.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) publish(ctx context.Context, snap *domain.BookSnapshot) {
	if e.cache == nil || snap == nil {
		return
	}
	e.pubMu.Lock()
	defer e.pubMu.Unlock()
	if snap.LastSeq <= e.lastPublished {
		e.log.Debug("dropping stale orderbook snapshot", zap.Uint64("last_seq", snap.LastSeq), zap.Uint64("published_seq", e.lastPublished))
		return
	}
	e.lastPublished = snap.LastSeq
	if err := e.cache.SetOrderbook(ctx, e.symbol, snap); err != nil {
		e.log.Warn("failed to publish orderbook snapshot", zap.Uint64("last_seq", snap.LastSeq), zap.Error(err))
	}
}

func (e *Engine) snapshotLocked(depth int) *domain.BookSnapshot {
	snap := e.book.Snapshot(depth)
	snap.LastSeq = e.seq
	snap.Timestamp = e.now()
	return snap
}

// GetOrder returns the current state of a resting order or of a recently
// filled one still within the retention limit.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

// GetTradesForOrder reads the recorded trades of an order from the trade
// store. Orders evicted from memory are still answered from the store.
func (e *Engine) GetTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	e.mu.Lock()
	_, known := e.orders[orderID]
	e.mu.Unlock()
	if e.store == nil {
		if !known {
			return nil, domain.ErrOrderNotFound
		}
		return nil, nil
	}
	trades, err := e.store.LoadTradesForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !known && len(trades) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return trades, nil
}

// Orderbook returns a live snapshot with up to depth levels per side.
func (e *Engine) Orderbook(depth int) *domain.BookSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(depth)
}

// BestPrices returns the top of the book; an empty side is nil.
func (e *Engine) BestPrices() (bid, ask *decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.book.BestBid(); ok {
		bid = &b
	}
	if a, ok := e.book.BestAsk(); ok {
		ask = &a
	}
	return bid, ask
}

// Close stops accepting submissions. Collaborators are owned and closed by the caller.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}
