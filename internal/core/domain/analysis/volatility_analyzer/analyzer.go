// internal/core/domain/analysis/volatility_analyzer/analyzer.go
package volatility_analyzer

import (
	"sort"

	"crypto-market-scanner/internal/core/domain/fetchers"
	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/pkg/logger"
)

// Analyzer ранжирует символы по волатильности доходностей
type Analyzer struct {
	topN int
}

// NewAnalyzer создает анализатор; topN <= 0 заменяется на DefaultTopN
func NewAnalyzer(topN int) *Analyzer {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Analyzer{topN: topN}
}

// Rank строит рейтинг по убыванию оценки.
// Равные оценки сохраняют порядок batch.Symbols.
func (a *Analyzer) Rank(batch fetchers.Batch) Result {
	result := Result{
		Entries:  make([]Entry, 0, len(batch.Symbols)),
		Excluded: make(market.Exclusions),
	}

	for _, sym := range batch.Symbols {
		res, ok := batch.Results[sym]
		if !ok || !res.OK() {
			result.Excluded.Add(market.ExcludedFetchFailed)
			continue
		}

		score, reason := Score(res.Series)
		if reason != "" {
			result.Excluded.Add(reason)
			continue
		}
		result.Entries = append(result.Entries, Entry{Symbol: sym, Score: score})
	}

	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].Score > result.Entries[j].Score
	})

	if len(result.Entries) > a.topN {
		result.Entries = result.Entries[:a.topN]
	}

	if n := result.Excluded.DataExcluded(); n > 0 {
		logger.Debug("📉 Volatility %s: исключено по данным %d (%v)", batch.Interval, n, result.Excluded)
	}

	return result
}
