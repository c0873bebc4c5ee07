package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/shopspring/decimal"
)

// Match executes incoming against the opposite ladder with price-time
// priority and rests any remainder in incoming's own ladder. Every trade is
// priced at the maker's limit.
func Match(ob *OrderBook, incoming *domain.Order, now time.Time) []*domain.Trade {
	var trades []*domain.Trade
	opposite := incoming.Side.Opposite()

	for incoming.Remaining.IsPositive() {
		maker, ok := ob.PeekTop(opposite)
		if !ok || !incoming.Marketable(maker.Price) {
			break
		}
		qty := decimal.Min(incoming.Remaining, maker.Remaining)

		trades = append(trades, &domain.Trade{
			ID:           uuid.NewString(),
			Symbol:       ob.Symbol,
			MakerOrderID: maker.ID,
			TakerOrderID: incoming.ID,
			TakerSide:    incoming.Side,
			Price:        maker.Price,
			Quantity:     qty,
			Timestamp:    now,
		})

		maker.UpdatedAt = now
		ob.ReduceOrRemove(maker.ID, qty)
		incoming.Remaining = incoming.Remaining.Sub(qty)
	}

	incoming.RefreshStatus()
	if len(trades) > 0 {
		incoming.UpdatedAt = now
	}
	if incoming.Remaining.IsPositive() {
		ob.Insert(incoming)
	}
	return trades
}
