// internal/core/domain/analysis/volatility_analyzer/types.go
package volatility_analyzer

import "crypto-market-scanner/internal/core/domain/market"

const (
	// DefaultTopN - размер рейтинга волатильности по умолчанию
	DefaultTopN = 10

	// minCandles - минимум свечей: две доходности дают хотя бы одно отклонение
	minCandles = 3
)

// Entry - символ с оценкой волатильности в процентах (>= 0)
type Entry struct {
	Symbol market.Symbol `json:"symbol"`
	Score  float64       `json:"score"`
}

// Result - рейтинг и счетчики исключенных символов
type Result struct {
	Entries  []Entry
	Excluded market.Exclusions
}
