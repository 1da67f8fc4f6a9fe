package models

// DefaultBalance is the cash balance assumed when no row exists yet.
const DefaultBalance = 100000.00

// Balance is the single cash row in quote currency.
// There is exactly one logical instance; it is updated in place on a
// fixed primary key rather than recreated.
type Balance struct {
	ID      uint    `json:"-" gorm:"primaryKey"`
	Balance float64 `json:"balance"`
}
