package server

import (
	"net/http"
	"strconv"
	"strings"

	"paper-trader-go/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) getHoldings(c *gin.Context) {
	holdings, err := s.Sim.Holdings()
	if err != nil {
		s.internalError(c, "Holdings", err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (s *Server) getTrades(c *gin.Context) {
	trades, err := s.Sim.Trades()
	if err != nil {
		s.internalError(c, "Trades", err)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	c.JSON(http.StatusOK, trades)
}

type submitOrderRequest struct {
	Side      string  `json:"side"`
	OrderType string  `json:"orderType"` // accepted for contract compatibility, only market simulation exists
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
}

func (s *Server) submitOrder(c *gin.Context) {
	var req submitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	if _, err := s.Sim.SubmitOrder(req.Side, req.Symbol, req.Price, req.Amount); err != nil {
		s.serviceError(c, "SubmitOrder", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// addTradeRequest takes price-like fields as json.Number so both JSON
// numbers and the frontend's stringified decimals are accepted.
type addTradeRequest struct {
	Timestamp   string     `json:"timestamp"`
	Side        string     `json:"side"`
	Asset       string     `json:"asset"`
	Price       jsonNumber `json:"price"`
	Amount      jsonNumber `json:"amount"`
	RealizedPnL jsonNumber `json:"realizedPnL"`
	Uid         string     `json:"uid"`
}

func (s *Server) addTrade(c *gin.Context) {
	var req addTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}

	trade := models.Trade{
		Timestamp:   req.Timestamp,
		Side:        req.Side,
		Asset:       req.Asset,
		Price:       req.Price.Float64(),
		Amount:      req.Amount.Float64(),
		RealizedPnL: req.RealizedPnL.Float64(),
		Uid:         req.Uid,
	}

	uid, err := s.Sim.AddTrade(trade)
	if err != nil {
		s.serviceError(c, "AddTrade", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uid": uid})
}

func (s *Server) clearTrades(c *gin.Context) {
	if err := s.Sim.ClearTrades(); err != nil {
		s.internalError(c, "ClearTrades", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getBalance(c *gin.Context) {
	balance, err := s.Sim.Balance()
	if err != nil {
		s.internalError(c, "Balance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

type updateBalanceRequest struct {
	Balance jsonNumber `json:"balance"`
}

func (s *Server) updateBalance(c *gin.Context) {
	var req updateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid balance")
		return
	}
	value, ok := req.Balance.Parse()
	if !ok {
		s.badRequest(c, "invalid balance")
		return
	}

	if err := s.Sim.SetBalance(value); err != nil {
		s.serviceError(c, "SetBalance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) resetBalance(c *gin.Context) {
	if err := s.Sim.ResetBalance(); err != nil {
		s.internalError(c, "ResetBalance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getUnrealizedPnL(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	if symbol == "" {
		s.badRequest(c, "symbol required")
		return
	}
	price, err := strconv.ParseFloat(c.Query("price"), 64)
	if err != nil || price <= 0 {
		s.badRequest(c, "valid price required")
		return
	}

	report, rerr := s.Sim.UnrealizedPnL(symbol, price)
	if rerr != nil {
		s.internalError(c, "UnrealizedPnL", rerr)
		return
	}
	c.JSON(http.StatusOK, report)
}
