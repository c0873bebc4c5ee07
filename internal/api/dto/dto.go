package dto

import (
	"time"

	"github.com/olyamironova/mev-matcher/internal/core"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	PersistenceOK     = "ok"
	PersistenceFailed = "failed"
)

// SubmitOrderRequest accepts prices and quantities as JSON strings or numbers.
// An empty type means LIMIT.
type SubmitOrderRequest struct {
	ClientID string          `json:"client_id,omitempty"`
	Side     string          `json:"side" binding:"required"`
	Type     string          `json:"type,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (r SubmitOrderRequest) ToDomain() domain.OrderRequest {
	typ := domain.OrderType(r.Type)
	if typ == "" {
		typ = domain.Limit
	}
	return domain.OrderRequest{
		ClientID: r.ClientID,
		Side:     domain.Side(r.Side),
		Type:     typ,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
}

type SubmitOrderResponse struct {
	Order       Order      `json:"order"`
	Trades      []Trade    `json:"trades"`
	Arbitrage   *Arbitrage `json:"arbitrage,omitempty"`
	Persistence string     `json:"persistence"`
	Message     string     `json:"message,omitempty"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type GetTradesResponse struct {
	OrderID string  `json:"order_id"`
	Trades  []Trade `json:"trades"`
}

type GetOrderbookResponse struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	LastSeq   uint64       `json:"last_seq"`
	Timestamp time.Time    `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type Order struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id,omitempty"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remaining decimal.Decimal `json:"remaining"`
	Filled    decimal.Decimal `json:"filled"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Trade struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	TakerSide    string          `json:"taker_side"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Arbitrage describes the round trip an incoming order exposed: buy at
// BuyPrice, sell at SellPrice.
type Arbitrage struct {
	OrderID    string          `json:"order_id"`
	Side       string          `json:"side"`
	BuyPrice   decimal.Decimal `json:"buy_price"`
	SellPrice  decimal.Decimal `json:"sell_price"`
	Profit     decimal.Decimal `json:"profit"`
	DetectedAt time.Time       `json:"detected_at"`
}

type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}

func FromOrder(o *domain.Order) Order {
	return Order{
		ID:        o.ID,
		ClientID:  o.ClientID,
		Symbol:    o.Symbol,
		Side:      string(o.Side),
		Type:      string(o.Type),
		Price:     o.Price,
		Quantity:  o.Quantity,
		Remaining: o.Remaining,
		Filled:    o.FilledQuantity(),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func FromTrades(trades []*domain.Trade) []Trade {
	res := make([]Trade, len(trades))
	for i, t := range trades {
		res[i] = Trade{
			ID:           t.ID,
			Symbol:       t.Symbol,
			MakerOrderID: t.MakerOrderID,
			TakerOrderID: t.TakerOrderID,
			TakerSide:    string(t.TakerSide),
			Price:        t.Price,
			Quantity:     t.Quantity,
			Timestamp:    t.Timestamp,
		}
	}
	return res
}

func FromSignal(s *domain.ArbitrageSignal) *Arbitrage {
	if s == nil {
		return nil
	}
	return &Arbitrage{
		OrderID:    s.OrderID,
		Side:       string(s.Side),
		BuyPrice:   s.BuyPrice(),
		SellPrice:  s.SellPrice(),
		Profit:     s.Profit,
		DetectedAt: s.DetectedAt,
	}
}

func FromSnapshot(s *domain.BookSnapshot) GetOrderbookResponse {
	return GetOrderbookResponse{
		Symbol:    s.Symbol,
		Bids:      fromLevels(s.Bids),
		Asks:      fromLevels(s.Asks),
		LastSeq:   s.LastSeq,
		Timestamp: s.Timestamp,
	}
}

func fromLevels(in []domain.PriceLevel) []PriceLevel {
	out := make([]PriceLevel, len(in))
	for i, l := range in {
		out[i] = PriceLevel{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	return out
}

// FromSubmitResult renders an accepted submission. A persistence failure is
// reported alongside the executed trades, never instead of them.
func FromSubmitResult(r *core.SubmitResult) SubmitOrderResponse {
	resp := SubmitOrderResponse{
		Order:       FromOrder(&r.Order),
		Trades:      FromTrades(r.Trades),
		Arbitrage:   FromSignal(r.Signal),
		Persistence: PersistenceOK,
	}
	if r.Degraded() {
		resp.Persistence = PersistenceFailed
		resp.Message = "trades executed but not recorded: " + r.PersistErr.Error()
	}
	return resp
}
