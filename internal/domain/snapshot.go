package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is the aggregated resting quantity at one price.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}

// BookSnapshot is a best-first view of both ladders.
type BookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	LastSeq   uint64       `json:"last_seq"`
	Timestamp time.Time    `json:"timestamp"`
}

func (s *BookSnapshot) DeepCopy() *BookSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Bids = append([]PriceLevel(nil), s.Bids...)
	cp.Asks = append([]PriceLevel(nil), s.Asks...)
	return &cp
}
