package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ArbitrageSignal describes an incoming order priced through the opposite best.
// It is advisory and never persisted.
type ArbitrageSignal struct {
	OrderID           string          `json:"order_id"`
	Symbol            string          `json:"symbol"`
	Side              Side            `json:"side"`
	IncomingPrice     decimal.Decimal `json:"incoming_price"`
	OpposingBestPrice decimal.Decimal `json:"opposing_best_price"`
	Profit            decimal.Decimal `json:"profit"`
	DetectedAt        time.Time       `json:"detected_at"`
}

// BuyPrice is the price of the buy leg of the opportunity.
func (s ArbitrageSignal) BuyPrice() decimal.Decimal {
	if s.Side == Buy {
		return s.OpposingBestPrice
	}
	return s.IncomingPrice
}

// SellPrice is the price of the sell leg of the opportunity.
func (s ArbitrageSignal) SellPrice() decimal.Decimal {
	if s.Side == Buy {
		return s.IncomingPrice
	}
	return s.OpposingBestPrice
}

func (s ArbitrageSignal) String() string {
	return fmt.Sprintf("incoming %s at %s crosses best %s of %s: buy at %s, sell at %s, profit %s",
		s.Side, s.IncomingPrice, s.Side.Opposite(), s.OpposingBestPrice, s.BuyPrice(), s.SellPrice(), s.Profit)
}
