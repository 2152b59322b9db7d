// internal/core/domain/analysis/movers_analyzer/types.go
package movers_analyzer

import "crypto-market-scanner/internal/core/domain/market"

const (
	// DefaultTopK - размер списков роста и падения по умолчанию
	DefaultTopK = 5

	minCandles = 2
)

// ChangeEntry - изменение цены символа за окно интервала, в процентах
type ChangeEntry struct {
	Symbol    market.Symbol `json:"symbol"`
	ChangePct float64       `json:"change_pct"`
}

// MoversForInterval - лидеры роста (по убыванию) и падения (по возрастанию)
type MoversForInterval struct {
	Interval string        `json:"interval"`
	Gainers  []ChangeEntry `json:"gainers"`
	Losers   []ChangeEntry `json:"losers"`
}

// Result - лидеры по интервалам и исключения, суммарно по всем интервалам
type Result struct {
	ByInterval map[string]MoversForInterval
	Excluded   market.Exclusions
}
