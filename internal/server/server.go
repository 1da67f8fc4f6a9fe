// Package server exposes the dashboard API over HTTP: the paper-trading
// ledger/balance surface and the market data proxies the frontend polls.
package server

import (
	"net/http"
	"time"

	"paper-trader-go/internal/marketdata"
	"paper-trader-go/internal/simulator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wires the router to the simulation service and the market
// data gateway.
type Server struct {
	R             *gin.Engine
	Sim           *simulator.Service
	Market        marketdata.GatewayInterface
	Snapshots     *marketdata.SnapshotHistory
	Logger        *zap.Logger
	SnapshotDepth int
}

type apiError struct {
	Error string `json:"error"`
}

// NewServer builds the router with logging, recovery and CORS
// middleware and registers all API routes.
func NewServer(sim *simulator.Service, market marketdata.GatewayInterface, logger *zap.Logger, corsOrigin string, snapshotDepth int) *Server {
	g := gin.New()

	// Request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logger.Info("http_request",
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.String("ip", cn.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})

	g.Use(gin.Recovery())

	// CORS
	g.Use(func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		cn.Writer.Header().Set("Vary", "Origin")
		cn.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		cn.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		cn.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	})

	s := &Server{
		R:             g,
		Sim:           sim,
		Market:        market,
		Snapshots:     marketdata.NewSnapshotHistory(),
		Logger:        logger,
		SnapshotDepth: snapshotDepth,
	}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })

	// Ledger, balance, P&L
	g.GET("/api/holdings", s.getHoldings)
	g.GET("/api/trades", s.getTrades)
	g.POST("/api/trades", s.submitOrder)
	g.POST("/api/trades/add", s.addTrade)
	g.POST("/api/trades/clear", s.clearTrades)
	g.GET("/api/trades/export", s.exportTrades)
	g.POST("/api/trades/import", s.importTrades)
	g.GET("/api/balance", s.getBalance)
	g.POST("/api/balance/update", s.updateBalance)
	g.POST("/api/balance/reset", s.resetBalance)
	g.GET("/api/unrealized-pnl", s.getUnrealizedPnL)

	// Market data proxies
	g.GET("/api/orderbook", s.getOrderBook)
	g.GET("/api/snapshots", s.getSnapshots)
	g.GET("/api/ticker", s.getTicker)
	g.GET("/api/ohlcv", s.getOHLCV)
	g.GET("/api/exchanges", s.getExchanges)
	g.GET("/api/symbols", s.getSymbols)

	return s
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Error: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error("internal_error", zap.String("where", where), zap.Error(err))
	c.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
}

// serviceError maps simulator errors onto status codes: rejections are
// the caller's fault, anything else is a store failure.
func (s *Server) serviceError(c *gin.Context, where string, err error) {
	if simulator.IsRejection(err) {
		s.badRequest(c, err.Error())
		return
	}
	s.internalError(c, where, err)
}
