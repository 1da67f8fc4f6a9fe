package models

// Holding is a derived position in one asset. It has no table of its
// own: holdings are recomputed from the trade ledger on every query,
// which makes a holdings-vs-trades desync impossible.
type Holding struct {
	Asset       string  `json:"asset"`
	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avgBuyPrice"`
}
