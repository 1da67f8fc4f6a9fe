// Package portfolio derives positions from the trade ledger.
//
// Holdings are never stored: quantity and average cost are recomputed
// from scratch on every query with a single pass over the trades. The
// cost model is a running weighted average over buys only; sells
// reduce quantity but never move the average.
package portfolio

import (
	"sort"
	"strings"

	"paper-trader-go/internal/models"

	"github.com/shopspring/decimal"
)

// Epsilon below which a derived quantity is treated as zero, so that
// accumulated float rounding cannot leave phantom dust holdings.
const Epsilon = 1e-6

// position accumulates one asset during the ledger pass.
type position struct {
	quantity  float64
	buyAmount float64
	buyValue  float64
}

func (p position) avgBuyPrice() float64 {
	if p.buyAmount <= 0 {
		return 0
	}
	return Round2(p.buyValue / p.buyAmount)
}

// Round2 rounds a monetary value to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// BaseAsset extracts the base asset from a market symbol, e.g.
// "BTC/USDT" -> "BTC". A symbol without a separator is its own base.
func BaseAsset(symbol string) string {
	return strings.SplitN(symbol, "/", 2)[0]
}

// aggregate runs the single accumulation pass over trades.
func aggregate(trades []models.Trade) map[string]position {
	positions := make(map[string]position)
	for _, t := range trades {
		p := positions[t.Asset]
		switch t.Side {
		case models.SideBuy:
			p.quantity += t.Amount
			p.buyAmount += t.Amount
			p.buyValue += t.Amount * t.Price
		case models.SideSell:
			p.quantity -= t.Amount
		}
		positions[t.Asset] = p
	}
	return positions
}

// ComputeHoldings derives the active holdings from the ledger,
// restricted to assets with quantity above Epsilon, sorted by asset.
func ComputeHoldings(trades []models.Trade) []models.Holding {
	positions := aggregate(trades)

	holdings := make([]models.Holding, 0, len(positions))
	for asset, p := range positions {
		if p.quantity <= Epsilon {
			continue
		}
		holdings = append(holdings, models.Holding{
			Asset:       asset,
			Quantity:    p.quantity,
			AvgBuyPrice: p.avgBuyPrice(),
		})
	}

	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Asset < holdings[j].Asset })
	return holdings
}

// HoldingFor derives quantity and average buy price for a single asset.
// The quantity may be zero or negative; callers decide what that means.
func HoldingFor(trades []models.Trade, asset string) (quantity, avgBuyPrice float64) {
	p := position{}
	for _, t := range trades {
		if t.Asset != asset {
			continue
		}
		switch t.Side {
		case models.SideBuy:
			p.quantity += t.Amount
			p.buyAmount += t.Amount
			p.buyValue += t.Amount * t.Price
		case models.SideSell:
			p.quantity -= t.Amount
		}
	}
	return p.quantity, p.avgBuyPrice()
}
