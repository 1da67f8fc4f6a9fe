package store

import (
	"fmt"

	"paper-trader-go/internal/models"
)

// AppendTrade appends one record to the ledger. The record is never
// touched again after this call.
func (s *Store) AppendTrade(trade *models.Trade) error {
	if err := s.db.Create(trade).Error; err != nil {
		return fmt.Errorf("failed to append trade: %w", err)
	}
	return nil
}

// Trades returns the full ledger in insertion order.
func (s *Store) Trades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

// TradesByAsset returns the ledger restricted to one base asset, in
// insertion order.
func (s *Store) TradesByAsset(asset string) ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Where("asset = ?", asset).Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades for %s: %w", asset, err)
	}
	return trades, nil
}

// ClearTrades deletes the entire ledger. Used to restart a simulation
// from scratch; the balance row is left alone.
func (s *Store) ClearTrades() error {
	if err := s.db.Unscoped().Where("1 = 1").Delete(&models.Trade{}).Error; err != nil {
		return fmt.Errorf("failed to clear trades: %w", err)
	}
	return nil
}
