package portfolio

import "paper-trader-go/internal/models"

// PnLReport is the authoritative unrealized P&L for one symbol at a
// given market price. Clients maintaining their own running estimate
// poll this and treat any divergence as a desync; the values here win.
type PnLReport struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgBuyPrice   float64 `json:"avgBuyPrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	UnrealizedPnL float64 `json:"unrealizedPnL"`
}

// UnrealizedPnL computes the paper P&L on the open position in the
// base asset of symbol, using the same ledger pass as ComputeHoldings.
// A position at or below Epsilon yields an all-zero report.
func UnrealizedPnL(trades []models.Trade, symbol string, currentPrice float64) PnLReport {
	asset := BaseAsset(symbol)
	quantity, avgBuyPrice := HoldingFor(trades, asset)

	if quantity < Epsilon {
		return PnLReport{Symbol: symbol, CurrentPrice: currentPrice}
	}

	return PnLReport{
		Symbol:        symbol,
		Quantity:      quantity,
		AvgBuyPrice:   avgBuyPrice,
		CurrentPrice:  currentPrice,
		UnrealizedPnL: Round2((currentPrice - avgBuyPrice) * quantity),
	}
}
