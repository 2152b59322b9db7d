// application/services/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-market-scanner/internal/core/domain/analysis/movers_analyzer"
	"crypto-market-scanner/internal/core/domain/analysis/volatility_analyzer"
	"crypto-market-scanner/internal/core/domain/fetchers"
	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/internal/core/domain/snapshot"
	events "crypto-market-scanner/internal/infrastructure/transport/event_bus"
	"crypto-market-scanner/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const eventSource = "scan_orchestrator"

// Publisher - получатель событий скана
type Publisher interface {
	Publish(event events.Event) error
}

// Options - зависимости оркестратора
type Options struct {
	// MaxConcurrentRequests - лимит одновременных запросов к источнику на все
	// загрузки скана вместе (волатильность и все интервалы движений)
	MaxConcurrentRequests int
	// Publisher - шина событий; nil отключает публикацию
	Publisher Publisher
}

// ScanOrchestrator выполняет скан: список символов, две независимые ветки
// загрузки и анализа, сборка Snapshot. Предыдущие снимки не хранит.
type ScanOrchestrator struct {
	source     market.Source
	fetcher    *fetchers.CandleFetcher
	volatility *volatility_analyzer.Analyzer
	movers     *movers_analyzer.Analyzer
	cfg        ScanConfig
	publisher  Publisher
	now        func() time.Time
}

// NewScanOrchestrator проверяет конфигурацию и создает оркестратор
func NewScanOrchestrator(source market.Source, cfg ScanConfig, opts Options) (*ScanOrchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.MoverIntervals = append([]string(nil), cfg.MoverIntervals...)

	return &ScanOrchestrator{
		source:     source,
		fetcher:    fetchers.NewCandleFetcher(source, fetchers.CandleFetcherConfig{MaxConcurrent: opts.MaxConcurrentRequests}),
		volatility: volatility_analyzer.NewAnalyzer(cfg.TopN),
		movers:     movers_analyzer.NewAnalyzer(cfg.TopK),
		cfg:        cfg,
		publisher:  opts.Publisher,
		now:        time.Now,
	}, nil
}

// Config возвращает копию конфигурации
func (o *ScanOrchestrator) Config() ScanConfig {
	cfg := o.cfg
	cfg.MoverIntervals = append([]string(nil), o.cfg.MoverIntervals...)
	return cfg
}

// RunScan выполняет скан и возвращает Snapshot.
// Ошибка списка символов возвращается как *market.SourceError, при отмене ctx снимок не возвращается.
func (o *ScanOrchestrator) RunScan(ctx context.Context) (*snapshot.Snapshot, error) {
	snap, _, err := o.Scan(ctx)
	return snap, err
}

// Scan выполняет скан и дополнительно возвращает сводку
func (o *ScanOrchestrator) Scan(ctx context.Context) (*snapshot.Snapshot, ScanReport, error) {
	report := ScanReport{
		ScanID:    uuid.New(),
		StartedAt: o.now(),
		Excluded:  make(market.Exclusions),
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, o.fail(report, err), err
	}

	o.publish(events.EventScanStarted, ScanEvent{Report: report})

	symbols, err := o.source.ListSymbols(ctx, o.cfg.QuoteAsset)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("scan %s cancelled: %w", report.ScanID, ctx.Err())
			return nil, o.fail(report, err), err
		}
		srcErr := &market.SourceError{QuoteAsset: o.cfg.QuoteAsset, Err: err}
		return nil, o.fail(report, srcErr), srcErr
	}
	report.SymbolCount = len(symbols)

	var (
		volBatch     fetchers.Batch
		volResult    volatility_analyzer.Result
		moverBatches map[string]fetchers.Batch
		moversResult movers_analyzer.Result
	)

	var g errgroup.Group
	g.Go(func() error {
		volBatch = o.fetcher.FetchMany(ctx, symbols, o.cfg.VolatilityInterval, o.cfg.VolatilityLimit)
		volResult = o.volatility.Rank(volBatch)
		return nil
	})
	g.Go(func() error {
		moverBatches = o.fetchMovers(ctx, symbols)
		moversResult = o.movers.Rank(o.cfg.MoverIntervals, moverBatches)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		err := fmt.Errorf("scan %s cancelled: %w", report.ScanID, ctx.Err())
		return nil, o.fail(report, err), err
	}

	report.FetchFailures = volBatch.Failures()
	for _, b := range moverBatches {
		report.FetchFailures += b.Failures()
	}
	report.Excluded.Merge(volResult.Excluded)
	report.Excluded.Merge(moversResult.Excluded)
	report.FinishedAt = o.now()
	report.Status = StatusCompleted

	snap := snapshot.New(report.ScanID.String(), report.StartedAt,
		volResult.Entries, o.cfg.MoverIntervals, moversResult.ByInterval)

	committed := commit(ctx, func() {
		o.publish(events.EventScanCompleted, ScanEvent{Report: report, Snapshot: snap})
	})
	if !committed {
		err := fmt.Errorf("scan %s cancelled: %w", report.ScanID, ctx.Err())
		return nil, o.fail(report, err), err
	}

	logger.ScanSummary(report.ScanID.String(), report.SymbolCount, report.FetchFailures,
		report.Excluded.DataExcluded(), report.Elapsed().Round(time.Millisecond))
	if report.SymbolCount > 0 && snap.IsEmpty() {
		logger.Warn("⚠️ Скан %s: все рейтинги пусты", report.ScanID)
	}
	return snap, report, nil
}

// fetchMovers загружает все интервалы лидеров параллельно
func (o *ScanOrchestrator) fetchMovers(ctx context.Context, symbols []market.Symbol) map[string]fetchers.Batch {
	slots := make([]fetchers.Batch, len(o.cfg.MoverIntervals))

	var g errgroup.Group
	for i, interval := range o.cfg.MoverIntervals {
		i, interval := i, interval
		g.Go(func() error {
			slots[i] = o.fetcher.FetchMany(ctx, symbols, interval, o.cfg.MoversLimit)
			return nil
		})
	}
	_ = g.Wait()

	batches := make(map[string]fetchers.Batch, len(slots))
	for i, interval := range o.cfg.MoverIntervals {
		batches[interval] = slots[i]
	}
	return batches
}

// fail завершает сводку ошибкой и публикует scan.failed
func (o *ScanOrchestrator) fail(report ScanReport, err error) ScanReport {
	report.FinishedAt = o.now()
	report.Err = err
	report.Status = StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		report.Status = StatusCancelled
	}

	if report.Status == StatusCancelled {
		logger.Warn("⏹️ Скан %s отменен, результат отброшен: %v", report.ScanID, err)
	} else {
		logger.Error("❌ Скан %s завершился ошибкой: %v", report.ScanID, err)
	}

	o.publish(events.EventScanFailed, ScanEvent{Report: report})
	return report
}

func (o *ScanOrchestrator) publish(eventType events.EventType, data ScanEvent) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(events.Event{Type: eventType, Source: eventSource, Data: data}); err != nil {
		logger.Warn("⚠️ Не удалось опубликовать %s: %v", eventType, err)
	}
}
