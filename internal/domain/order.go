package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderType string
type OrderStatus string

const (
	Buy             Side        = "BUY"
	Sell            Side        = "SELL"
	Limit           OrderType   = "LIMIT"
	Market          OrderType   = "MARKET"
	Open            OrderStatus = "OPEN"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
)

// Opposite returns the side an order of s trades against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

type Order struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id,omitempty"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Type      OrderType       `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remaining decimal.Decimal `json:"remaining"`
	Seq       uint64          `json:"seq"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FilledQuantity is the part of the order that has already traded.
func (o *Order) FilledQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.Remaining)
}

func (o *Order) IsTerminal() bool {
	return !o.Remaining.IsPositive()
}

// Marketable reports whether o crosses a resting order priced at p.
func (o *Order) Marketable(p decimal.Decimal) bool {
	if o.Side == Buy {
		return o.Price.GreaterThanOrEqual(p)
	}
	return o.Price.LessThanOrEqual(p)
}

// RefreshStatus derives Status from the remaining quantity.
func (o *Order) RefreshStatus() {
	switch {
	case o.IsTerminal():
		o.Status = Filled
	case o.Remaining.LessThan(o.Quantity):
		o.Status = PartiallyFilled
	default:
		o.Status = Open
	}
}

// OrderRequest is the transport-neutral submission input.
type OrderRequest struct {
	ClientID string
	Side     Side
	Type     OrderType
	Price    decimal.Decimal
	Quantity decimal.Decimal
}
