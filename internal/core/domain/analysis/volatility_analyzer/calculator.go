// internal/core/domain/analysis/volatility_analyzer/calculator.go
package volatility_analyzer

import (
	"math"

	"crypto-market-scanner/internal/core/domain/market"
)

// Returns вычисляет простые доходности close-to-close.
// Нулевая предыдущая цена дает ExcludedZeroBase.
func Returns(closes []float64) ([]float64, market.ExclusionReason) {
	if len(closes) < 2 {
		return nil, market.ExcludedInsufficientData
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			return nil, market.ExcludedZeroBase
		}
		r := (closes[i] - prev) / prev
		if !isFinite(r) {
			return nil, market.ExcludedNonFinite
		}
		returns = append(returns, r)
	}
	return returns, ""
}

// SampleStdDev - выборочное стандартное отклонение (ddof=1), два прохода
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Score возвращает волатильность серии в процентах.
// Пустая причина означает что оценка валидна.
func Score(series market.CandleSeries) (float64, market.ExclusionReason) {
	if len(series) < minCandles {
		return 0, market.ExcludedInsufficientData
	}

	returns, reason := Returns(series.Closes())
	if reason != "" {
		return 0, reason
	}

	score := SampleStdDev(returns) * 100
	if !isFinite(score) {
		return 0, market.ExcludedNonFinite
	}
	return score, ""
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
