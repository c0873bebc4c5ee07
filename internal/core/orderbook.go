package core

import (
	"fmt"
	"sort"

	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// priceLevel holds the resting orders at one price in sequence order.
type priceLevel struct {
	price  decimal.Decimal
	orders []*domain.Order
}

// OrderBook keeps two price-ordered ladders. Each ladder is sorted so that
// its Min is the best price: bids descending, asks ascending. The book is
// not safe for concurrent use; Engine serialises access to it.
type OrderBook struct {
	Symbol string
	bids   *btree.BTreeG[*priceLevel]
	asks   *btree.BTreeG[*priceLevel]
	index  map[string]*domain.Order
}

func NewOrderBook(symbol string) *OrderBook {
	opts := btree.Options{NoLocks: true}
	return &OrderBook{
		Symbol: symbol,
		bids: btree.NewBTreeGOptions(func(a, b *priceLevel) bool {
			return a.price.GreaterThan(b.price)
		}, opts),
		asks: btree.NewBTreeGOptions(func(a, b *priceLevel) bool {
			return a.price.LessThan(b.price)
		}, opts),
		index: make(map[string]*domain.Order),
	}
}

func (ob *OrderBook) ladder(side domain.Side) *btree.BTreeG[*priceLevel] {
	if side == domain.Buy {
		return ob.bids
	}
	return ob.asks
}

// Insert rests o in its ladder behind every order with a lower sequence
// number at the same price.
func (ob *OrderBook) Insert(o *domain.Order) {
	if !o.Remaining.IsPositive() {
		panic(fmt.Sprintf("orderbook: insert of terminal order %s", o.ID))
	}
	if _, dup := ob.index[o.ID]; dup {
		panic(fmt.Sprintf("orderbook: order %s already resting", o.ID))
	}
	ladder := ob.ladder(o.Side)
	lvl, ok := ladder.Get(&priceLevel{price: o.Price})
	if !ok {
		lvl = &priceLevel{price: o.Price}
		ladder.Set(lvl)
	}
	i := sort.Search(len(lvl.orders), func(i int) bool {
		return lvl.orders[i].Seq > o.Seq
	})
	lvl.orders = append(lvl.orders, nil)
	copy(lvl.orders[i+1:], lvl.orders[i:])
	lvl.orders[i] = o
	ob.index[o.ID] = o
}

func (ob *OrderBook) BestBid() (decimal.Decimal, bool) {
	return ob.best(domain.Buy)
}

func (ob *OrderBook) BestAsk() (decimal.Decimal, bool) {
	return ob.best(domain.Sell)
}

func (ob *OrderBook) best(side domain.Side) (decimal.Decimal, bool) {
	lvl, ok := ob.ladder(side).Min()
	if !ok {
		return decimal.Zero, false
	}
	return lvl.price, true
}

// PeekTop returns the order that would match next on side without removing it.
func (ob *OrderBook) PeekTop(side domain.Side) (*domain.Order, bool) {
	lvl, ok := ob.ladder(side).Min()
	if !ok {
		return nil, false
	}
	return lvl.orders[0], true
}

// ReduceOrRemove applies a fill of qty to a resting order and drops it from
// the book once nothing remains. It reports whether the order was removed.
// Unknown ids and over-fills are programming errors and panic.
func (ob *OrderBook) ReduceOrRemove(orderID string, qty decimal.Decimal) bool {
	o, ok := ob.index[orderID]
	if !ok {
		panic(fmt.Sprintf("orderbook: reduce of unknown order %s", orderID))
	}
	if !qty.IsPositive() || qty.GreaterThan(o.Remaining) {
		panic(fmt.Sprintf("orderbook: fill %s out of range for order %s with remaining %s", qty, orderID, o.Remaining))
	}
	o.Remaining = o.Remaining.Sub(qty)
	o.RefreshStatus()
	if o.Remaining.IsPositive() {
		return false
	}

	ladder := ob.ladder(o.Side)
	lvl, ok := ladder.Get(&priceLevel{price: o.Price})
	if !ok {
		panic(fmt.Sprintf("orderbook: order %s indexed but level %s missing", orderID, o.Price))
	}
	for i, r := range lvl.orders {
		if r.ID == orderID {
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			break
		}
	}
	if len(lvl.orders) == 0 {
		ladder.Delete(lvl)
	}
	delete(ob.index, orderID)
	return true
}

// Get returns a resting order by id.
func (ob *OrderBook) Get(orderID string) (*domain.Order, bool) {
	o, ok := ob.index[orderID]
	return o, ok
}

// Len is the number of resting orders on both sides.
func (ob *OrderBook) Len() int {
	return len(ob.index)
}

// Crossed reports best bid >= best ask. It must never hold between matches.
func (ob *OrderBook) Crossed() bool {
	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	return okBid && okAsk && bid.GreaterThanOrEqual(ask)
}

// Walk visits the resting orders of side in matching order until fn returns false.
func (ob *OrderBook) Walk(side domain.Side, fn func(o *domain.Order) bool) {
	ob.ladder(side).Scan(func(lvl *priceLevel) bool {
		for _, o := range lvl.orders {
			if !fn(o) {
				return false
			}
		}
		return true
	})
}

// Snapshot aggregates up to depth price levels per side; depth <= 0 means all.
func (ob *OrderBook) Snapshot(depth int) *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Symbol: ob.Symbol,
		Bids:   levels(ob.bids, depth),
		Asks:   levels(ob.asks, depth),
	}
}

func levels(ladder *btree.BTreeG[*priceLevel], depth int) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, ladder.Len())
	ladder.Scan(func(lvl *priceLevel) bool {
		if depth > 0 && len(out) >= depth {
			return false
		}
		qty := decimal.Zero
		for _, o := range lvl.orders {
			qty = qty.Add(o.Remaining)
		}
		out = append(out, domain.PriceLevel{Price: lvl.price, Quantity: qty, Orders: len(lvl.orders)})
		return true
	})
	return out
}
