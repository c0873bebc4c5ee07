package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/olyamironova/mev-matcher/internal/adapter/in_memory"
	"github.com/olyamironova/mev-matcher/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T) (*MatcherClient, *core.Engine) {
	t.Helper()
	eng := core.NewEngine("BTC-USD", core.WithTradeStore(in_memory.NewTradeStore()))
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(NewGRPCServer(eng, nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewMatcherClient(conn), eng
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestSubmitAndQuery(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	ask, err := c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "SELL", "price": "45000", "quantity": "5"}))
	require.NoError(t, err)
	askID := ask.Fields["order"].GetStructValue().Fields["id"].GetStringValue()
	require.NotEmpty(t, askID)
	assert.Nil(t, ask.Fields["arbitrage"])

	buy, err := c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "price": "45100", "quantity": "1"}))
	require.NoError(t, err)
	trades := buy.Fields["trades"].GetListValue().GetValues()
	require.Len(t, trades, 1)
	assert.Equal(t, "45000", trades[0].GetStructValue().Fields["price"].GetStringValue())
	arb := buy.Fields["arbitrage"].GetStructValue()
	require.NotNil(t, arb)
	assert.Equal(t, "100", arb.Fields["profit"].GetStringValue())
	assert.Equal(t, "ok", buy.Fields["persistence"].GetStringValue())

	got, err := c.GetOrder(ctx, mustStruct(t, map[string]any{"order_id": askID}))
	require.NoError(t, err)
	assert.Equal(t, "4", got.Fields["order"].GetStructValue().Fields["remaining"].GetStringValue())

	tr, err := c.GetTradesForOrder(ctx, mustStruct(t, map[string]any{"order_id": askID}))
	require.NoError(t, err)
	assert.Len(t, tr.Fields["trades"].GetListValue().GetValues(), 1)

	book, err := c.GetOrderbook(ctx, mustStruct(t, map[string]any{"depth": 5}))
	require.NoError(t, err)
	asks := book.Fields["asks"].GetListValue().GetValues()
	require.Len(t, asks, 1)
	assert.Equal(t, "4", asks[0].GetStructValue().Fields["quantity"].GetStringValue())
	assert.Equal(t, float64(2), book.Fields["last_seq"].GetNumberValue())
}

func TestErrorCodes(t *testing.T) {
	ctx := context.Background()
	c, eng := newTestClient(t)

	_, err := c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "price": "1", "quantity": "0"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "type": "MARKET", "quantity": "1"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.GetOrder(ctx, mustStruct(t, map[string]any{"order_id": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.GetOrder(ctx, mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.GetOrderbook(ctx, mustStruct(t, map[string]any{"depth": -1}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	eng.Close()
	_, err = c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "price": "1", "quantity": "1"}))
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestSubmitRequiresDecimalStrings(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	_, err := c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "price": "1", "quantity": 1234567890.123456789}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "quantity")

	_, err = c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "price": 45000, "quantity": "1"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "price")

	res, err := c.SubmitOrder(ctx, mustStruct(t, map[string]any{"side": "BUY", "price": "1", "quantity": "1234567890.123456789"}))
	require.NoError(t, err)
	order := res.Fields["order"].GetStructValue()
	assert.Equal(t, "1234567890.123456789", order.Fields["quantity"].GetStringValue())
}
