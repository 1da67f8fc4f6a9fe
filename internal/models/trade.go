package models

import "gorm.io/gorm"

// Trade sides as stored in the ledger.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade is one simulated execution in the append-only ledger.
// Records are never updated after creation; the ledger is only ever
// appended to or cleared wholesale.
type Trade struct {
	gorm.Model
	Timestamp   string  `json:"timestamp"` // ISO-8601 execution time
	Side        string  `json:"side"`      // "buy" or "sell"
	Asset       string  `json:"asset"`     // base asset, e.g. "BTC"
	Price       float64 `json:"price"`
	Amount      float64 `json:"amount"`
	RealizedPnL float64 `json:"realizedPnL"`
	Uid         string  `json:"uid" gorm:"column:uid"`
}
