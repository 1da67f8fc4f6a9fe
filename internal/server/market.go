package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"paper-trader-go/internal/marketdata"

	"github.com/gin-gonic/gin"
)

const (
	defaultOrderBookSymbol = "BTC/USDT"
	defaultOHLCVInterval   = "1m"
	ohlcvLimit             = 200
)

// marketError maps gateway failures: an unknown exchange is the
// caller's mistake, everything else is an upstream failure.
func (s *Server) marketError(c *gin.Context, where string, err error) {
	if errors.Is(err, marketdata.ErrUnknownExchange) {
		s.badRequest(c, err.Error())
		return
	}
	s.internalError(c, where, err)
}

// getOrderBook proxies a depth snapshot. When an explicit symbol is
// given, the snapshot is also recorded into the bounded history that
// /api/snapshots serves.
func (s *Server) getOrderBook(c *gin.Context) {
	exchange := strings.TrimSpace(c.Query("exchange"))
	if exchange == "" {
		s.badRequest(c, "exchange required")
		return
	}
	symbol := strings.TrimSpace(c.Query("symbol"))

	requested := symbol
	if requested == "" {
		requested = defaultOrderBookSymbol
	}

	book, err := s.Market.OrderBook(c.Request.Context(), exchange, requested, s.SnapshotDepth)
	if err != nil {
		s.marketError(c, "OrderBook", err)
		return
	}

	if symbol != "" {
		s.Snapshots.Append(exchange, symbol, marketdata.Snapshot{
			Timestamp: time.Now().UnixMilli(),
			Bids:      book.Bids,
			Asks:      book.Asks,
		})
	}

	c.JSON(http.StatusOK, book)
}

func (s *Server) getSnapshots(c *gin.Context) {
	exchange := strings.TrimSpace(c.Query("exchange"))
	symbol := strings.TrimSpace(c.Query("symbol"))
	if exchange == "" || symbol == "" {
		s.badRequest(c, "exchange and symbol required")
		return
	}
	c.JSON(http.StatusOK, s.Snapshots.Recent(exchange, symbol))
}

func (s *Server) getTicker(c *gin.Context) {
	exchange := strings.TrimSpace(c.Query("exchange"))
	symbol := strings.TrimSpace(c.Query("symbol"))
	if exchange == "" || symbol == "" {
		s.badRequest(c, "exchange and symbol required")
		return
	}

	ticker, err := s.Market.Ticker(c.Request.Context(), exchange, symbol)
	if err != nil {
		s.marketError(c, "Ticker", err)
		return
	}
	c.JSON(http.StatusOK, ticker)
}

func (s *Server) getOHLCV(c *gin.Context) {
	exchange := strings.TrimSpace(c.Query("exchange"))
	symbol := strings.TrimSpace(c.Query("symbol"))
	if exchange == "" || symbol == "" {
		s.badRequest(c, "exchange and symbol required")
		return
	}
	interval := strings.TrimSpace(c.Query("interval"))
	if interval == "" {
		interval = defaultOHLCVInterval
	}

	candles, err := s.Market.OHLCV(c.Request.Context(), exchange, symbol, interval, ohlcvLimit)
	if err != nil {
		s.marketError(c, "OHLCV", err)
		return
	}
	c.JSON(http.StatusOK, candles)
}

func (s *Server) getExchanges(c *gin.Context) {
	c.JSON(http.StatusOK, s.Market.Exchanges())
}

func (s *Server) getSymbols(c *gin.Context) {
	exchange := strings.TrimSpace(c.Query("exchange"))
	if exchange == "" {
		s.badRequest(c, "exchange required")
		return
	}

	symbols, err := s.Market.Symbols(c.Request.Context(), exchange)
	if err != nil {
		s.marketError(c, "Symbols", err)
		return
	}
	c.JSON(http.StatusOK, symbols)
}
