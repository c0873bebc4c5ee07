package core

import (
	"fmt"
	"time"

	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/shopspring/decimal"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newOrder(side domain.Side, price, qty string, seq uint64) *domain.Order {
	q := d(qty)
	return &domain.Order{
		ID:        fmt.Sprintf("%s-%d", side, seq),
		Symbol:    "BTC-USD",
		Side:      side,
		Type:      domain.Limit,
		Price:     d(price),
		Quantity:  q,
		Remaining: q,
		Seq:       seq,
		Status:    domain.Open,
		CreatedAt: testTime,
	}
}

func limit(side domain.Side, price, qty string) domain.OrderRequest {
	return domain.OrderRequest{Side: side, Type: domain.Limit, Price: d(price), Quantity: d(qty)}
}

func restingIDs(ob *OrderBook, side domain.Side) []string {
	var ids []string
	ob.Walk(side, func(o *domain.Order) bool {
		ids = append(ids, o.ID)
		return true
	})
	return ids
}
