package estimate

import (
	"math"

	"paper-trader-go/internal/portfolio"

	"go.uber.org/zap"
)

// Tolerance within which estimate and authoritative P&L are considered
// in agreement.
const Tolerance = 0.01

// Desync describes a detected divergence between the local estimate
// and the authoritative recomputation. It is diagnostic only and never
// blocks anything; the authoritative value wins wherever shown.
type Desync struct {
	Symbol        string  `json:"symbol"`
	Estimate      float64 `json:"estimate"`
	Authoritative float64 `json:"authoritative"`
	Drift         float64 `json:"drift"`
}

// Reconciler compares estimator output against the authoritative
// engine and surfaces desync events.
type Reconciler struct {
	logger    *zap.Logger
	tolerance float64
}

// NewReconciler creates a Reconciler with the default tolerance.
func NewReconciler(logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{logger: logger, tolerance: Tolerance}
}

// Check compares the local estimate with the authoritative report.
// When the drift exceeds the tolerance a Desync is returned and logged.
func (r *Reconciler) Check(estimated float64, authoritative portfolio.PnLReport) (Desync, bool) {
	drift := math.Abs(estimated - authoritative.UnrealizedPnL)
	if drift <= r.tolerance {
		return Desync{}, false
	}

	d := Desync{
		Symbol:        authoritative.Symbol,
		Estimate:      estimated,
		Authoritative: authoritative.UnrealizedPnL,
		Drift:         drift,
	}
	r.logger.Warn("pnl desync detected",
		zap.String("symbol", d.Symbol),
		zap.Float64("estimate", d.Estimate),
		zap.Float64("authoritative", d.Authoritative),
		zap.Float64("drift", d.Drift),
	)
	return d, true
}
