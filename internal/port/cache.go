package port

import (
	"context"

	"github.com/olyamironova/mev-matcher/internal/domain"
)

// Cache holds the last published book snapshot per symbol. GetOrderbook
// returns (nil, nil) when nothing has been published.
type Cache interface {
	SetOrderbook(ctx context.Context, symbol string, ob *domain.BookSnapshot) error
	GetOrderbook(ctx context.Context, symbol string) (*domain.BookSnapshot, error)
}
