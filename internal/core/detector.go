package core

import (
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/shopspring/decimal"
)

// Detect compares incoming with the current best opposite price and returns
// a signal when the order is priced strictly through it. It never mutates
// the book; DetectedAt is left for the caller to stamp.
func Detect(ob *OrderBook, incoming *domain.Order) *domain.ArbitrageSignal {
	var (
		best   decimal.Decimal
		ok     bool
		profit decimal.Decimal
	)
	switch incoming.Side {
	case domain.Buy:
		if best, ok = ob.BestAsk(); !ok || !incoming.Price.GreaterThan(best) {
			return nil
		}
		profit = incoming.Price.Sub(best)
	case domain.Sell:
		if best, ok = ob.BestBid(); !ok || !incoming.Price.LessThan(best) {
			return nil
		}
		profit = best.Sub(incoming.Price)
	default:
		return nil
	}
	return &domain.ArbitrageSignal{
		OrderID:           incoming.ID,
		Symbol:            ob.Symbol,
		Side:              incoming.Side,
		IncomingPrice:     incoming.Price,
		OpposingBestPrice: best,
		Profit:            profit,
	}
}
