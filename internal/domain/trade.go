package domain

import (
	"cmp"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable fill between a resting maker and an incoming taker.
// Fills of one submission share a Timestamp; Seq gives their execution order.
type Trade struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	TakerSide    Side            `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Timestamp    time.Time       `json:"timestamp"`
	Seq          uint64          `json:"seq"`
}

// Notional is price times quantity.
func (t *Trade) Notional() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}

// CompareTrades orders trades by execution: timestamp, then sequence.
func CompareTrades(a, b *Trade) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}
