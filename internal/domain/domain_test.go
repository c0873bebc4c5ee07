package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRequestValidate(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		name    string
		req     OrderRequest
		wantErr error
	}{
		{"valid buy", OrderRequest{Side: Buy, Type: Limit, Price: d("45000"), Quantity: d("1")}, nil},
		{"valid sell fractional", OrderRequest{Side: Sell, Type: Limit, Price: d("0.0001"), Quantity: d("0.5")}, nil},
		{"bad side", OrderRequest{Side: "HOLD", Type: Limit, Price: d("1"), Quantity: d("1")}, ErrInvalidSide},
		{"market", OrderRequest{Side: Buy, Type: Market, Price: d("1"), Quantity: d("1")}, ErrUnsupportedOrderType},
		{"zero price", OrderRequest{Side: Buy, Type: Limit, Price: d("0"), Quantity: d("1")}, ErrInvalidPrice},
		{"negative price", OrderRequest{Side: Sell, Type: Limit, Price: d("-5"), Quantity: d("1")}, ErrInvalidPrice},
		{"zero quantity", OrderRequest{Side: Buy, Type: Limit, Price: d("1"), Quantity: decimal.Zero}, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, IsValidation(err))
		})
	}
}

func TestOrderRefreshStatus(t *testing.T) {
	o := &Order{Quantity: decimal.NewFromInt(5), Remaining: decimal.NewFromInt(5)}
	o.RefreshStatus()
	assert.Equal(t, Open, o.Status)

	o.Remaining = decimal.NewFromInt(2)
	o.RefreshStatus()
	assert.Equal(t, PartiallyFilled, o.Status)
	assert.True(t, o.FilledQuantity().Equal(decimal.NewFromInt(3)))

	o.Remaining = decimal.Zero
	o.RefreshStatus()
	assert.Equal(t, Filled, o.Status)
	assert.True(t, o.IsTerminal())
}

func TestArbitrageSignalLegs(t *testing.T) {
	buy := ArbitrageSignal{Side: Buy, IncomingPrice: decimal.NewFromInt(45100), OpposingBestPrice: decimal.NewFromInt(45000)}
	assert.Equal(t, "45000", buy.BuyPrice().String())
	assert.Equal(t, "45100", buy.SellPrice().String())

	sell := ArbitrageSignal{Side: Sell, IncomingPrice: decimal.NewFromInt(100), OpposingBestPrice: decimal.NewFromInt(101)}
	assert.Equal(t, "100", sell.BuyPrice().String())
	assert.Equal(t, "101", sell.SellPrice().String())
}

func TestCompareTrades(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &Trade{Timestamp: at, Seq: 1}
	b := &Trade{Timestamp: at, Seq: 2}
	c := &Trade{Timestamp: at.Add(-time.Second), Seq: 3}

	assert.Negative(t, CompareTrades(a, b))
	assert.Positive(t, CompareTrades(b, a))
	assert.Positive(t, CompareTrades(a, c), "timestamp wins over seq")
	assert.Zero(t, CompareTrades(a, a))
}

func TestTradeNotional(t *testing.T) {
	tr := &Trade{Price: decimal.RequireFromString("45000.5"), Quantity: decimal.RequireFromString("0.2")}
	assert.Equal(t, "9000.1", tr.Notional().String())
}
