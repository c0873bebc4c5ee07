package in_memory

import (
	"context"
	"slices"
	"sync"

	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/port"
)

// TradeStore keeps trades in process memory, indexed by both order ids.
type TradeStore struct {
	mu      sync.Mutex
	trades  map[string]*domain.Trade
	byOrder map[string][]*domain.Trade
}

var _ port.TradeStore = (*TradeStore)(nil)

func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades:  make(map[string]*domain.Trade),
		byOrder: make(map[string][]*domain.Trade),
	}
}

func (r *TradeStore) SaveTrade(ctx context.Context, t *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trades[t.ID]; ok {
		return nil
	}
	cp := *t
	r.trades[t.ID] = &cp
	r.byOrder[t.MakerOrderID] = append(r.byOrder[t.MakerOrderID], &cp)
	r.byOrder[t.TakerOrderID] = append(r.byOrder[t.TakerOrderID], &cp)
	return nil
}

func (r *TradeStore) LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*domain.Trade, 0, len(r.byOrder[orderID]))
	for _, t := range r.byOrder[orderID] {
		cp := *t
		res = append(res, &cp)
	}
	slices.SortFunc(res, domain.CompareTrades)
	return res, nil
}

func (r *TradeStore) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trades)
}

func (r *TradeStore) Close(ctx context.Context) {}
