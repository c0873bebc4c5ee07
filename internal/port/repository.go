package port

import (
	"context"

	"github.com/olyamironova/mev-matcher/internal/domain"
)

// TradeStore durably records executed trades. SaveTrade must be safe to
// retry with the same trade.
type TradeStore interface {
	SaveTrade(ctx context.Context, t *domain.Trade) error
	LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error)
	Close(ctx context.Context)
}
