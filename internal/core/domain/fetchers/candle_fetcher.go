// internal/core/domain/fetchers/candle_fetcher.go
package fetchers

import (
	"context"
	"errors"
	"time"

	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/pkg/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// CandleFetcher параллельно загружает свечи для множества символов.
// Ошибка одного символа не отменяет остальные запросы, повторов нет.
// Лимит одновременных запросов общий для всех вызовов FetchMany одного экземпляра.
type CandleFetcher struct {
	source market.Source
	sem    *semaphore.Weighted // nil: без лимита
}

// NewCandleFetcher создает новый CandleFetcher
func NewCandleFetcher(source market.Source, cfg CandleFetcherConfig) *CandleFetcher {
	f := &CandleFetcher{source: source}
	if cfg.MaxConcurrent > 0 {
		f.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	return f
}

// FetchMany выполняет по одному запросу на символ. Сверх лимита запросы ждут в очереди.
// При отмене ctx еще не выполненные символы получают FetchError с ctx.Err().
func (f *CandleFetcher) FetchMany(ctx context.Context, symbols []market.Symbol, interval string, limit int) Batch {
	start := time.Now()
	unique := dedupe(symbols)

	// Каждая горутина пишет только в свою ячейку, блокировки не нужны
	slots := make([]FetchResult, len(unique))

	g := new(errgroup.Group)

	for i, sym := range unique {
		if err := ctx.Err(); err != nil {
			slots[i] = failed(sym, interval, err)
			continue
		}

		i, sym := i, sym
		g.Go(func() error {
			slots[i] = f.fetchOne(ctx, sym, interval, limit)
			return nil
		})
	}
	_ = g.Wait()

	batch := Batch{
		Interval: interval,
		Limit:    limit,
		Symbols:  unique,
		Results:  make(map[market.Symbol]FetchResult, len(unique)),
	}
	for i, sym := range unique {
		batch.Results[sym] = slots[i]
	}

	logger.Debug("📥 CandleFetcher: %s limit=%d: символов %d, ошибок %d, коротких серий %d, за %v",
		interval, limit, len(unique), batch.Failures(), batch.Short(), time.Since(start).Round(time.Millisecond))

	return batch
}

func (f *CandleFetcher) fetchOne(ctx context.Context, sym market.Symbol, interval string, limit int) FetchResult {
	if err := ctx.Err(); err != nil {
		return failed(sym, interval, err)
	}
	if f.sem != nil {
		if err := f.sem.Acquire(ctx, 1); err != nil {
			return failed(sym, interval, err)
		}
		defer f.sem.Release(1)
	}

	series, err := f.source.GetCandles(ctx, sym, interval, limit)
	if err != nil {
		logger.Debug("⚠️ CandleFetcher: %s/%s: %v", sym, interval, err)
		return failed(sym, interval, err)
	}
	return FetchResult{Series: series}
}

func failed(sym market.Symbol, interval string, err error) FetchResult {
	var fe *market.FetchError
	if errors.As(err, &fe) {
		return FetchResult{Err: fe}
	}
	return FetchResult{Err: &market.FetchError{Symbol: sym, Interval: interval, Err: err}}
}

func dedupe(symbols []market.Symbol) []market.Symbol {
	seen := make(map[market.Symbol]struct{}, len(symbols))
	out := make([]market.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
