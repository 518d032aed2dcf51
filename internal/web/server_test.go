package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alpinex/alpinex/internal/domain"
	"github.com/alpinex/alpinex/internal/simulator/market"
	"github.com/alpinex/alpinex/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st := store.New(zap.NewNop(), store.DefaultState())
	sim := market.NewSimulator(map[string]decimal.Decimal{
		"BTCUSDT": decimal.NewFromFloat(43200.50),
	})
	return NewServer(":0", st, sim, zap.NewNop()), st
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleState(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.mux(), http.MethodGet, "/state", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var state store.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.ModeTrade, state.Mode)
	assert.NotEmpty(t, state.HodlAssets)
	assert.NotEmpty(t, state.TradeAssets)
}

func TestHandleTransfer_Success(t *testing.T) {
	srv, st := newTestServer(t)

	rec := doJSON(t, srv.mux(), http.MethodPost, "/transfer", map[string]any{
		"from":   "hodl",
		"to":     "trade",
		"symbol": "BTC",
		"amount": "0.1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tx domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, domain.TransactionTypeTransfer, tx.Type)
	assert.Equal(t, "BTC", tx.Asset)
	assert.True(t, tx.Amount.Equal(decimal.NewFromFloat(0.1)))
	// valued at the destination ledger's price
	assert.True(t, tx.Value.GreaterThan(decimal.Zero))

	snap := st.Snapshot()
	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, tx.ID, snap.Transactions[0].ID)
}

func TestHandleTransfer_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name:   "unknown asset",
			body:   map[string]any{"from": "hodl", "to": "trade", "symbol": "DOGE", "amount": "1"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "insufficient balance",
			body:   map[string]any{"from": "hodl", "to": "trade", "symbol": "BTC", "amount": "10"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "non-positive amount",
			body:   map[string]any{"from": "hodl", "to": "trade", "symbol": "BTC", "amount": "0"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "invalid wallet",
			body:   map[string]any{"from": "margin", "to": "trade", "symbol": "BTC", "amount": "1"},
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, st := newTestServer(t)
			rec := doJSON(t, srv.mux(), http.MethodPost, "/transfer", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			// a rejected transfer must not leave a transaction behind
			assert.Empty(t, st.Snapshot().Transactions)
		})
	}
}

func TestHandleOrders_PostAndGet(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.mux()

	rec := doJSON(t, mux, http.MethodPost, "/orders", map[string]any{
		"pair":   "BTC/USDT",
		"type":   "limit",
		"side":   "buy",
		"amount": "0.1",
		"price":  "43000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.OrderStatusOpen, created.Status)

	rec = doJSON(t, mux, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, created.ID, orders[0].ID)
}

func TestHandleOrders_RejectsInvalid(t *testing.T) {
	srv, _ := newTestServer(t)

	// a market order must not carry a price
	rec := doJSON(t, srv.mux(), http.MethodPost, "/orders", map[string]any{
		"pair":   "BTC/USDT",
		"type":   "market",
		"side":   "buy",
		"amount": "0.1",
		"price":  "43000",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestHandleOrderPatch(t *testing.T) {
	srv, st := newTestServer(t)
	mux := srv.mux()

	price := decimal.NewFromInt(43000)
	order := domain.NewOrder(domain.Pair{Base: "BTC", Quote: "USDT"}, domain.OrderTypeLimit, domain.OrderSideBuy, decimal.NewFromFloat(0.1), &price)
	require.NoError(t, st.AddOrder(order))

	rec := doJSON(t, mux, http.MethodPatch, "/orders/"+order.ID, map[string]any{
		"status": "cancelled",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.OrderStatusCancelled, st.Snapshot().Orders[0].Status)

	// cancelled is terminal, further patches conflict
	rec = doJSON(t, mux, http.MethodPatch, "/orders/"+order.ID, map[string]any{
		"status": "open",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, mux, http.MethodPatch, "/orders/missing", map[string]any{
		"status": "cancelled",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMode(t *testing.T) {
	srv, st := newTestServer(t)
	mux := srv.mux()

	rec := doJSON(t, mux, http.MethodPut, "/mode", map[string]any{"mode": "hodl"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ModeHodl, st.Snapshot().Mode)

	rec = doJSON(t, mux, http.MethodPut, "/mode", map[string]any{"mode": "margin"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlePair(t *testing.T) {
	srv, st := newTestServer(t)
	mux := srv.mux()

	rec := doJSON(t, mux, http.MethodPut, "/pair", map[string]any{"pair": "ETH/USDT"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ETH/USDT", st.Snapshot().CurrentPair.String())

	rec = doJSON(t, mux, http.MethodPut, "/pair", map[string]any{"pair": "ETHUSDT"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.mux()

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/state"},
		{http.MethodGet, "/transfer"},
		{http.MethodGet, "/mode"},
		{http.MethodGet, "/pair"},
		{http.MethodGet, "/orders/some-id"},
	} {
		rec := doJSON(t, mux, tc.method, tc.path, nil)
		assert.Equalf(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", tc.method, tc.path)
	}
}
