// internal/core/domain/analysis/movers_analyzer/calculator.go
package movers_analyzer

import (
	"math"

	"crypto-market-scanner/internal/core/domain/market"
)

// ChangePct - (close последней свечи - open первой) / open первой * 100
func ChangePct(series market.CandleSeries) (float64, market.ExclusionReason) {
	if len(series) < minCandles {
		return 0, market.ExcludedInsufficientData
	}

	firstOpen := series[0].Open
	lastClose := series[len(series)-1].Close
	if firstOpen == 0 {
		return 0, market.ExcludedZeroBase
	}

	change := (lastClose - firstOpen) / firstOpen * 100
	if math.IsNaN(change) || math.IsInf(change, 0) {
		return 0, market.ExcludedNonFinite
	}
	return change, ""
}
