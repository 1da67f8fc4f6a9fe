package store

import (
	"errors"
	"fmt"

	"paper-trader-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// balanceRowID is the fixed primary key of the singleton balance row.
const balanceRowID = 1

// Balance returns the available cash. When no row exists yet the
// default starting balance is reported without creating one.
func (s *Store) Balance() (float64, error) {
	var row models.Balance
	err := s.db.First(&row, balanceRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultBalance, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load balance: %w", err)
	}
	return row.Balance, nil
}

// EnsureBalance creates the balance row with the configured starting
// cash when none exists yet. An existing balance is left untouched.
func (s *Store) EnsureBalance(initial float64) error {
	var row models.Balance
	err := s.db.First(&row, balanceRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.SetBalance(initial)
	}
	if err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	return nil
}

// SetBalance writes the cash balance in place on the fixed row,
// creating it on first write.
func (s *Store) SetBalance(value float64) error {
	row := models.Balance{ID: balanceRowID, Balance: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}
