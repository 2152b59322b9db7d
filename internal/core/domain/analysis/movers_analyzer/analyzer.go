// internal/core/domain/analysis/movers_analyzer/analyzer.go
package movers_analyzer

import (
	"sort"

	"crypto-market-scanner/internal/core/domain/fetchers"
	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/pkg/logger"
)

// Analyzer строит списки лидеров роста и падения по интервалам
type Analyzer struct {
	topK int
}

// NewAnalyzer создает анализатор; topK <= 0 заменяется на DefaultTopK
func NewAnalyzer(topK int) *Analyzer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Analyzer{topK: topK}
}

// Rank обрабатывает каждый интервал независимо.
// Интервал без батча или с полностью неудачным батчем дает пустые списки.
func (a *Analyzer) Rank(intervals []string, batches map[string]fetchers.Batch) Result {
	result := Result{
		ByInterval: make(map[string]MoversForInterval, len(intervals)),
		Excluded:   make(market.Exclusions),
	}

	for _, interval := range intervals {
		movers, excluded := a.rankInterval(interval, batches[interval])
		result.ByInterval[interval] = movers
		result.Excluded.Merge(excluded)
	}
	return result
}

func (a *Analyzer) rankInterval(interval string, batch fetchers.Batch) (MoversForInterval, market.Exclusions) {
	excluded := make(market.Exclusions)
	entries := make([]ChangeEntry, 0, len(batch.Symbols))

	for _, sym := range batch.Symbols {
		res, ok := batch.Results[sym]
		if !ok || !res.OK() {
			excluded.Add(market.ExcludedFetchFailed)
			continue
		}

		change, reason := ChangePct(res.Series)
		if reason != "" {
			excluded.Add(reason)
			continue
		}
		entries = append(entries, ChangeEntry{Symbol: sym, ChangePct: change})
	}

	if n := excluded.DataExcluded(); n > 0 {
		logger.Debug("📊 Movers %s: исключено по данным %d (%v)", interval, n, excluded)
	}

	return MoversForInterval{
		Interval: interval,
		Gainers:  a.top(entries, func(x, y float64) bool { return x > y }),
		Losers:   a.top(entries, func(x, y float64) bool { return x < y }),
	}, excluded
}

// top сортирует копию entries устойчиво и обрезает до topK
func (a *Analyzer) top(entries []ChangeEntry, before func(x, y float64) bool) []ChangeEntry {
	sorted := make([]ChangeEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return before(sorted[i].ChangePct, sorted[j].ChangePct)
	})

	if len(sorted) > a.topK {
		sorted = sorted[:a.topK]
	}
	return sorted
}
