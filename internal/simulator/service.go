// Package simulator executes simulated buy/sell orders against live
// market prices. No real order ever leaves this process: an accepted
// order only moves the cash balance and appends to the trade ledger.
package simulator

import (
	"math"
	"sync"
	"time"

	"paper-trader-go/internal/models"
	"paper-trader-go/internal/portfolio"
	"paper-trader-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service validates and executes simulated orders. The mutex
// serializes every submission so two concurrent orders cannot both
// pass the sufficiency check against a stale balance; check and write
// additionally share one database transaction.
type Service struct {
	mu     sync.Mutex
	store  *store.Store
	logger *zap.Logger
}

// NewService creates the order simulation service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, logger: logger}
}

// SubmitOrder validates and executes one simulated order. On success
// the executed trade is returned; a buy debits price*amount from the
// balance, a sell credits it and books the realized P&L against the
// average cost at the time of sale.
func (s *Service) SubmitOrder(side, symbol string, price, amount float64) (*models.Trade, error) {
	if side != models.SideBuy && side != models.SideSell {
		return nil, invalidf("invalid side")
	}
	if symbol == "" {
		return nil, invalidf("invalid symbol")
	}
	if !isPositiveFinite(price) {
		return nil, invalidf("invalid price")
	}
	if !isPositiveFinite(amount) {
		return nil, invalidf("invalid amount")
	}
	asset := portfolio.BaseAsset(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	var executed *models.Trade
	err := s.store.Transaction(func(tx *store.Store) error {
		balance, err := tx.Balance()
		if err != nil {
			return err
		}

		realizedPnL := 0.0
		switch side {
		case models.SideBuy:
			if balance < price*amount {
				return ErrInsufficientFunds
			}
			balance -= price * amount
		case models.SideSell:
			trades, err := tx.TradesByAsset(asset)
			if err != nil {
				return err
			}
			quantity, avgBuyPrice := portfolio.HoldingFor(trades, asset)
			if quantity < amount {
				return ErrInsufficientHoldings
			}
			realizedPnL = portfolio.Round2((price - avgBuyPrice) * amount)
			balance += price * amount
		}

		if err := tx.SetBalance(balance); err != nil {
			return err
		}

		trade := &models.Trade{
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Side:        side,
			Asset:       asset,
			Price:       price,
			Amount:      amount,
			RealizedPnL: realizedPnL,
			Uid:         uuid.NewString(),
		}
		if err := tx.AppendTrade(trade); err != nil {
			return err
		}
		executed = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order executed",
		zap.String("side", executed.Side),
		zap.String("asset", executed.Asset),
		zap.Float64("price", executed.Price),
		zap.Float64("amount", executed.Amount),
		zap.Float64("realized_pnl", executed.RealizedPnL),
	)
	return executed, nil
}

// AddTrade normalizes and appends an externally specified trade record
// without touching the balance. Callers on this path (the sell-from-
// holdings view, CSV ingest) are responsible for having settled cash
// through SubmitOrder or for accepting balance/ledger drift.
func (s *Service) AddTrade(trade models.Trade) (string, error) {
	if trade.Side != models.SideBuy && trade.Side != models.SideSell {
		return "", invalidf("invalid side")
	}
	if trade.Asset == "" {
		return "", invalidf("invalid asset")
	}
	if !isPositiveFinite(trade.Price) {
		return "", invalidf("invalid price")
	}
	if !isPositiveFinite(trade.Amount) {
		return "", invalidf("invalid amount")
	}
	if trade.Timestamp == "" {
		trade.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if trade.Uid == "" {
		trade.Uid = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.AppendTrade(&trade); err != nil {
		return "", err
	}
	return trade.Uid, nil
}

// Holdings derives the current active positions from the ledger.
func (s *Service) Holdings() ([]models.Holding, error) {
	trades, err := s.store.Trades()
	if err != nil {
		return nil, err
	}
	return portfolio.ComputeHoldings(trades), nil
}

// Trades returns the full ledger in insertion order.
func (s *Service) Trades() ([]models.Trade, error) {
	return s.store.Trades()
}

// ClearTrades wipes the ledger to restart a simulation. The balance is
// left untouched.
func (s *Service) ClearTrades() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ClearTrades()
}

// Balance returns the available cash.
func (s *Service) Balance() (float64, error) {
	return s.store.Balance()
}

// SetBalance replaces the cash balance.
func (s *Service) SetBalance(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return invalidf("invalid balance")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetBalance(value)
}

// ResetBalance restores the default starting balance.
func (s *Service) ResetBalance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetBalance(models.DefaultBalance)
}

// UnrealizedPnL is the authoritative unrealized P&L recomputation for
// the base asset of symbol at the given market price. Clients holding
// their own estimate cross-check against this.
func (s *Service) UnrealizedPnL(symbol string, currentPrice float64) (portfolio.PnLReport, error) {
	trades, err := s.store.TradesByAsset(portfolio.BaseAsset(symbol))
	if err != nil {
		return portfolio.PnLReport{}, err
	}
	return portfolio.UnrealizedPnL(trades, symbol, currentPrice), nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
