package port

import (
	"context"

	"github.com/olyamironova/mev-matcher/internal/domain"
)

// SignalSink receives arbitrage signals. Emit is called while the book is
// locked, so implementations must not block.
type SignalSink interface {
	Emit(ctx context.Context, s domain.ArbitrageSignal)
}
