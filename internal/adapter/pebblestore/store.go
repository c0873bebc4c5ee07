package pebblestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/port"
)

var _ port.TradeStore = (*Store)(nil)

// Store is an embedded trade store for single-node deployments.
type Store struct {
	db *pebble.DB
}

type Option func(*pebble.Options)

// WithFS swaps the filesystem, e.g. vfs.NewMem() in tests.
func WithFS(fs vfs.FS) Option {
	return func(o *pebble.Options) { o.FS = fs }
}

func Open(path string, opts ...Option) (*Store, error) {
	o := &pebble.Options{}
	for _, opt := range opts {
		opt(o)
	}
	db, err := pebble.Open(path, o)
	if err != nil {
		return nil, fmt.Errorf("pebble: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// keys: t:<trade id> holds the trade, o:<order id>:<trade id> indexes it
// under both of its orders.
func tradeKey(id string) []byte { return []byte("t:" + id) }
func orderPrefix(orderID string) []byte {
	return []byte("o:" + orderID + ":")
}
func orderKey(orderID, tradeID string) []byte {
	return append(orderPrefix(orderID), tradeID...)
}

func keyUpperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func (s *Store) SaveTrade(ctx context.Context, t *domain.Trade) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("pebble: encode trade: %w", err)
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(tradeKey(t.ID), data, nil); err != nil {
		return fmt.Errorf("pebble: save trade: %w", err)
	}
	for _, id := range []string{t.MakerOrderID, t.TakerOrderID} {
		if err := b.Set(orderKey(id, t.ID), nil, nil); err != nil {
			return fmt.Errorf("pebble: index trade: %w", err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble: commit trade: %w", err)
	}
	return nil
}

func (s *Store) getTrade(id string) (*domain.Trade, error) {
	val, closer, err := s.db.Get(tradeKey(id))
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	var t domain.Trade
	if err := json.Unmarshal(val, &t); err != nil {
		return nil, fmt.Errorf("pebble: decode trade %s: %w", id, err)
	}
	return &t, nil
}

// LoadTradesForOrder returns the trades in which orderID was maker or taker, oldest first.
func (s *Store) LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	prefix := orderPrefix(orderID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("pebble: iterate: %w", err)
	}
	defer iter.Close()

	var res []*domain.Trade
	for iter.First(); iter.Valid(); iter.Next() {
		id := string(iter.Key()[len(prefix):])
		t, err := s.getTrade(id)
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("pebble: index points at missing trade %s", id)
		}
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("pebble: iterate: %w", err)
	}
	slices.SortFunc(res, domain.CompareTrades)
	return res, nil
}

func (s *Store) Close(ctx context.Context) {
	_ = s.db.Close()
}
