package fetchers

import (
	"crypto-market-scanner/internal/core/domain/market"
)

// FetchResult - результат загрузки одного символа: либо серия, либо ошибка
type FetchResult struct {
	Series market.CandleSeries
	Err    *market.FetchError
}

// OK возвращает true если загрузка прошла успешно
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Batch - результаты одного FetchMany по одному интервалу.
// Symbols хранит исходный порядок перечисления (нужен для стабильной сортировки).
type Batch struct {
	Interval string
	Limit    int
	Symbols  []market.Symbol
	Results  map[market.Symbol]FetchResult
}

// Failures возвращает количество символов с ошибкой загрузки
func (b Batch) Failures() int {
	n := 0
	for _, r := range b.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// Short возвращает количество успешных серий короче запрошенного лимита
func (b Batch) Short() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() && len(r.Series) < b.Limit {
			n++
		}
	}
	return n
}

// CandleFetcherConfig - конфигурация CandleFetcher
type CandleFetcherConfig struct {
	// MaxConcurrent - лимит одновременных запросов на весь CandleFetcher,
	// общий для параллельных FetchMany; <= 0 означает без лимита
	MaxConcurrent int
}
