package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paper-trader-go/internal/database"
	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/models"
	"paper-trader-go/internal/simulator"
	"paper-trader-go/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockGateway is a mock implementation of marketdata.GatewayInterface.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Exchanges() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockGateway) Symbols(ctx context.Context, exchange string) ([]string, error) {
	args := m.Called(exchange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGateway) OrderBook(ctx context.Context, exchange, symbol string, limit int) (*marketdata.OrderBook, error) {
	args := m.Called(exchange, symbol, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketdata.OrderBook), args.Error(1)
}

func (m *MockGateway) Ticker(ctx context.Context, exchange, symbol string) (*marketdata.Ticker, error) {
	args := m.Called(exchange, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketdata.Ticker), args.Error(1)
}

func (m *MockGateway) OHLCV(ctx context.Context, exchange, symbol, interval string, limit int) ([]marketdata.Candle, error) {
	args := m.Called(exchange, symbol, interval, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketdata.Candle), args.Error(1)
}

// setupServer builds a Server over an in-memory database and a mock
// market data gateway.
func setupServer(t *testing.T) (*Server, *MockGateway) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	sim := simulator.NewService(store.New(db), zap.NewNop())
	gw := new(MockGateway)
	return NewServer(sim, gw, zap.NewNop(), "*", 20), gw
}

func doJSON(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.R.ServeHTTP(w, req)
	return w
}

func TestSubmitOrder_EndToEnd(t *testing.T) {
	s, _ := setupServer(t)

	w := doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "buy", "orderType": "market", "symbol": "BTC/USDT", "price": 50000, "amount": 1,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, http.MethodGet, "/api/holdings", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var holdings []models.Holding
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &holdings))
	assert.Len(t, holdings, 1)
	assert.Equal(t, models.Holding{Asset: "BTC", Quantity: 1, AvgBuyPrice: 50000}, holdings[0])

	w = doJSON(s, http.MethodGet, "/api/balance", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":50000}`, w.Body.String())
}

func TestSubmitOrder_RejectionsAre400(t *testing.T) {
	s, _ := setupServer(t)

	w := doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "hold", "symbol": "BTC/USDT", "price": 1, "amount": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid side")

	w = doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "buy", "symbol": "BTC/USDT", "price": 60000, "amount": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient funds")

	w = doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "sell", "symbol": "ETH/USDT", "price": 3000, "amount": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient holdings")

	// rejected attempts left the ledger empty
	w = doJSON(s, http.MethodGet, "/api/trades", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAddTrade_AcceptsStringNumbers(t *testing.T) {
	s, _ := setupServer(t)

	w := doJSON(s, http.MethodPost, "/api/trades/add", gin.H{
		"side": "buy", "asset": "BTC", "price": "50000", "amount": "0.5", "realizedPnL": "0",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Uid     string `json:"uid"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Uid)

	// add-trade does not touch the balance
	w = doJSON(s, http.MethodGet, "/api/balance", nil)
	assert.JSONEq(t, `{"balance":100000}`, w.Body.String())
}

func TestClearTrades(t *testing.T) {
	s, _ := setupServer(t)

	doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "buy", "symbol": "BTC/USDT", "price": 50000, "amount": 1,
	})
	w := doJSON(s, http.MethodPost, "/api/trades/clear", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, http.MethodGet, "/api/trades", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	// balance keeps the effect of the cleared trade
	w = doJSON(s, http.MethodGet, "/api/balance", nil)
	assert.JSONEq(t, `{"balance":50000}`, w.Body.String())
}

func TestBalanceUpdateAndReset(t *testing.T) {
	s, _ := setupServer(t)

	w := doJSON(s, http.MethodPost, "/api/balance/update", gin.H{"balance": 2500.75})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, http.MethodGet, "/api/balance", nil)
	assert.JSONEq(t, `{"balance":2500.75}`, w.Body.String())

	w = doJSON(s, http.MethodPost, "/api/balance/update", gin.H{"balance": "not-a-number"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(s, http.MethodPost, "/api/balance/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, http.MethodGet, "/api/balance", nil)
	assert.JSONEq(t, `{"balance":100000}`, w.Body.String())
}

func TestUnrealizedPnL_Endpoint(t *testing.T) {
	s, _ := setupServer(t)

	doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "buy", "symbol": "BTC/USDT", "price": 50000, "amount": 1,
	})

	w := doJSON(s, http.MethodGet, "/api/unrealized-pnl?symbol=BTC/USDT&price=55000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbol":"BTC/USDT","quantity":1,"avgBuyPrice":50000,"currentPrice":55000,"unrealizedPnL":5000}`, w.Body.String())

	w = doJSON(s, http.MethodGet, "/api/unrealized-pnl?price=55000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(s, http.MethodGet, "/api/unrealized-pnl?symbol=BTC/USDT&price=oops", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(s, http.MethodGet, "/api/unrealized-pnl?symbol=BTC/USDT&price=-2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderBook_RecordsSnapshot(t *testing.T) {
	s, gw := setupServer(t)

	book := &marketdata.OrderBook{
		Bids: []marketdata.PriceLevel{{50000, 1}},
		Asks: []marketdata.PriceLevel{{50001, 2}},
	}
	gw.On("OrderBook", "binance", "BTC/USDT", 20).Return(book, nil)

	w := doJSON(s, http.MethodGet, "/api/orderbook?exchange=binance&symbol=BTC/USDT", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, http.MethodGet, "/api/snapshots?exchange=binance&symbol=BTC/USDT", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var snaps []marketdata.Snapshot
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &snaps))
	assert.Len(t, snaps, 1)
	assert.Equal(t, book.Bids, snaps[0].Bids)

	gw.AssertExpectations(t)
}

func TestOrderBook_DefaultSymbolNotSnapshotted(t *testing.T) {
	s, gw := setupServer(t)

	gw.On("OrderBook", "binance", "BTC/USDT", 20).Return(&marketdata.OrderBook{}, nil)

	w := doJSON(s, http.MethodGet, "/api/orderbook?exchange=binance", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(s, http.MethodGet, "/api/snapshots?exchange=binance&symbol=BTC/USDT", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrderBook_MissingExchange(t *testing.T) {
	s, _ := setupServer(t)

	w := doJSON(s, http.MethodGet, "/api/orderbook", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshots_MissingParams(t *testing.T) {
	s, _ := setupServer(t)

	w := doJSON(s, http.MethodGet, "/api/snapshots?exchange=binance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExchangesAndSymbols(t *testing.T) {
	s, gw := setupServer(t)

	gw.On("Exchanges").Return([]string{"binance", "mexc"})
	gw.On("Symbols", "binance").Return([]string{"BTC/USDT", "ETH/USDT"}, nil)

	w := doJSON(s, http.MethodGet, "/api/exchanges", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["binance","mexc"]`, w.Body.String())

	w = doJSON(s, http.MethodGet, "/api/symbols?exchange=binance", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["BTC/USDT","ETH/USDT"]`, w.Body.String())

	gw.AssertExpectations(t)
}

func TestSymbols_UnknownExchangeIs400(t *testing.T) {
	s, gw := setupServer(t)

	gw.On("Symbols", "unknown").Return(nil, marketdata.ErrUnknownExchange)

	w := doJSON(s, http.MethodGet, "/api/symbols?exchange=unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicker_Endpoint(t *testing.T) {
	s, gw := setupServer(t)

	gw.On("Ticker", "binance", "BTC/USDT").Return(&marketdata.Ticker{Symbol: "BTC/USDT", Last: 50000}, nil)

	w := doJSON(s, http.MethodGet, "/api/ticker?exchange=binance&symbol=BTC/USDT", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"last":50000`)
}

func TestOHLCV_Endpoint(t *testing.T) {
	s, gw := setupServer(t)

	candles := []marketdata.Candle{{1700000000000, 1, 2, 0.5, 1.5, 10}}
	gw.On("OHLCV", "binance", "BTC/USDT", "5m", 200).Return(candles, nil)

	w := doJSON(s, http.MethodGet, "/api/ohlcv?exchange=binance&symbol=BTC/USDT&interval=5m", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	gw.AssertExpectations(t)
}

func TestCSVExportImportRoundtrip(t *testing.T) {
	s, _ := setupServer(t)

	doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "buy", "symbol": "BTC/USDT", "price": 50000, "amount": 1,
	})
	doJSON(s, http.MethodPost, "/api/trades", gin.H{
		"side": "sell", "symbol": "BTC/USDT", "price": 60000, "amount": 0.5,
	})

	w := doJSON(s, http.MethodGet, "/api/trades/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	exported := w.Body.String()
	assert.Contains(t, exported, "timestamp,side,asset,price,amount,realizedPnL,uid")

	// wipe and re-import into a ledger that derives the same holdings
	doJSON(s, http.MethodPost, "/api/trades/clear", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", strings.NewReader(exported))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	s.R.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = doJSON(s, http.MethodGet, "/api/holdings", nil)
	var holdings []models.Holding
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &holdings))
	assert.Len(t, holdings, 1)
	assert.Equal(t, 0.5, holdings[0].Quantity)
	assert.Equal(t, 50000.0, holdings[0].AvgBuyPrice)
}

func TestImportTrades_RejectsMalformedCSV(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", strings.NewReader("timestamp,side\nonly,two\n"))
	rec := httptest.NewRecorder()
	s.R.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/trades", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.R.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
