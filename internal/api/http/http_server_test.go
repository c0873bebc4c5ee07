package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olyamironova/mev-matcher/internal/adapter/in_memory"
	"github.com/olyamironova/mev-matcher/internal/api/dto"
	"github.com/olyamironova/mev-matcher/internal/core"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ *in_memory.TradeStore }

func (failingStore) SaveTrade(context.Context, *domain.Trade) error {
	return errors.New("connection refused")
}

func newTestRouter(t *testing.T, opts ...core.Option) (*gin.Engine, *core.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := metrics.New("BTC-USD")
	base := []core.Option{
		core.WithTradeStore(in_memory.NewTradeStore()),
		core.WithMetrics(m),
		core.WithClock(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }),
	}
	eng := core.NewEngine("BTC-USD", append(base, opts...)...)
	return NewHTTPServer(eng, WithMetrics(m)).Router(), eng
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/", "").Code)

	w := do(t, r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSubmitOrderFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/orders", `{"client_id":"mm-1","side":"SELL","type":"LIMIT","price":"45000","quantity":"5"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ask := decode[dto.SubmitOrderResponse](t, w)
	assert.Empty(t, ask.Trades)
	assert.Nil(t, ask.Arbitrage)
	assert.Equal(t, "OPEN", ask.Order.Status)
	assert.Equal(t, "mm-1", ask.Order.ClientID)

	w = do(t, r, http.MethodPost, "/orders", `{"side":"BUY","price":45100,"quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	buy := decode[dto.SubmitOrderResponse](t, w)
	require.Len(t, buy.Trades, 1)
	assert.Equal(t, "45000", buy.Trades[0].Price.String())
	assert.Equal(t, ask.Order.ID, buy.Trades[0].MakerOrderID)
	require.NotNil(t, buy.Arbitrage)
	assert.Equal(t, "100", buy.Arbitrage.Profit.String())
	assert.Equal(t, dto.PersistenceOK, buy.Persistence)

	w = do(t, r, http.MethodGet, "/orders/"+ask.Order.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.GetOrderResponse](t, w)
	assert.Equal(t, "4", got.Order.Remaining.String())
	assert.Equal(t, "PARTIALLY_FILLED", got.Order.Status)

	w = do(t, r, http.MethodGet, "/orders/"+ask.Order.ID+"/trades", "")
	require.Equal(t, http.StatusOK, w.Code)
	trades := decode[dto.GetTradesResponse](t, w)
	assert.Len(t, trades.Trades, 1)

	w = do(t, r, http.MethodGet, "/orderbook?depth=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	book := decode[dto.GetOrderbookResponse](t, w)
	assert.Empty(t, book.Bids)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, "4", book.Asks[0].Quantity.String())
	assert.Equal(t, uint64(2), book.LastSeq)
}

func TestSubmitOrderValidation(t *testing.T) {
	r, eng := newTestRouter(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"zero quantity", `{"side":"BUY","price":"1","quantity":"0"}`, "quantity"},
		{"negative price", `{"side":"BUY","price":"-5","quantity":"1"}`, "price"},
		{"unknown side", `{"side":"HOLD","price":"1","quantity":"1"}`, "side"},
		{"market order", `{"side":"BUY","type":"MARKET","quantity":"1"}`, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.field, decode[dto.ErrorResponse](t, w).Field)
		})
	}

	w := do(t, r, http.MethodPost, "/orders", `{"price":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodPost, "/orders", `{"side":"BUY","price":"abc","quantity":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, eng.Orderbook(0).LastSeq)
}

func TestSubmitOrderDegradedPersistence(t *testing.T) {
	r, _ := newTestRouter(t, core.WithTradeStore(failingStore{in_memory.NewTradeStore()}))

	do(t, r, http.MethodPost, "/orders", `{"side":"SELL","price":"10","quantity":"1"}`)
	w := do(t, r, http.MethodPost, "/orders", `{"side":"BUY","price":"10","quantity":"1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.SubmitOrderResponse](t, w)
	assert.Equal(t, dto.PersistenceFailed, resp.Persistence)
	assert.Contains(t, resp.Message, "connection refused")
	assert.Len(t, resp.Trades, 1)
}

func TestNotFoundAndBadDepth(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/orders/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/orders/missing/trades", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/orderbook?depth=-1", "").Code)
}

func TestClosedEngine(t *testing.T) {
	r, eng := newTestRouter(t)
	eng.Close()
	w := do(t, r, http.MethodPost, "/orders", `{"side":"BUY","price":"1","quantity":"1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(t, r, http.MethodPost, "/orders", `{"side":"BUY","price":"1","quantity":"1"}`)

	w := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `matcher_orders_submitted_total{side="BUY",symbol="BTC-USD"} 1`)
}

func TestSubmitRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewHTTPServer(core.NewEngine("BTC-USD"), WithRateLimit(time.Hour)).Router()

	submit := func() int {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"side":"BUY","price":"1","quantity":"1"}`))
		req.Header.Set("X-Client-ID", "bot")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, submit())
	assert.Equal(t, http.StatusTooManyRequests, submit())
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/orderbook", "").Code, "reads are not limited")
}
