// Package estimate is the client-embeddable side of the P&L
// dual-computation. It maintains positions incrementally as orders are
// applied, instead of re-reading the ledger, and is deliberately an
// independent implementation of the same accounting rules as package
// portfolio: divergence between the two is a signal worth detecting,
// so they must not share code.
package estimate

import (
	"math"
	"strings"
	"sync"
)

// epsilon mirrors the dust threshold of the authoritative engine.
const epsilon = 1e-6

type state struct {
	quantity  float64
	buyAmount float64
	buyValue  float64
}

// Estimator keeps an incrementally maintained view of positions.
// Safe for concurrent use.
type Estimator struct {
	mu        sync.RWMutex
	positions map[string]*state
}

// NewEstimator returns an Estimator with no positions.
func NewEstimator() *Estimator {
	return &Estimator{positions: make(map[string]*state)}
}

// ApplyBuy folds one executed buy into the running position.
func (e *Estimator) ApplyBuy(asset string, price, amount float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.position(asset)
	s.quantity += amount
	s.buyAmount += amount
	s.buyValue += amount * price
}

// ApplySell folds one executed sell into the running position. The
// average cost is untouched: this is a weighted-average-cost model.
func (e *Estimator) ApplySell(asset string, amount float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position(asset).quantity -= amount
}

// Reset drops all positions, matching a ledger clear.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions = make(map[string]*state)
}

// Position reports the current quantity and average buy price for the
// base asset of symbol.
func (e *Estimator) Position(symbol string) (quantity, avgBuyPrice float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.positions[baseAsset(symbol)]
	if !ok {
		return 0, 0
	}
	if s.buyAmount > 0 {
		avgBuyPrice = round2(s.buyValue / s.buyAmount)
	}
	return s.quantity, avgBuyPrice
}

// Unrealized estimates the paper P&L for the base asset of symbol at
// the given market price. Positions at or below the dust threshold
// estimate to zero.
func (e *Estimator) Unrealized(symbol string, currentPrice float64) float64 {
	quantity, avgBuyPrice := e.Position(symbol)
	if quantity < epsilon {
		return 0
	}
	return round2((currentPrice - avgBuyPrice) * quantity)
}

func (e *Estimator) position(asset string) *state {
	s, ok := e.positions[asset]
	if !ok {
		s = &state{}
		e.positions[asset] = s
	}
	return s
}

func baseAsset(symbol string) string {
	if i := strings.Index(symbol, "/"); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
