package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crypto-market-scanner/internal/core/domain/market"
	events "crypto-market-scanner/internal/infrastructure/transport/event_bus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource отдает заранее заданные серии по (символ, интервал)
type fakeSource struct {
	symbols []market.Symbol
	listErr error
	series  map[string]market.CandleSeries
	failing map[market.Symbol]bool

	// block, если задан, держит GetCandles до отмены ctx
	block bool
}

func key(s market.Symbol, interval string) string {
	return string(s) + "/" + interval
}

func (f *fakeSource) ListSymbols(ctx context.Context, quoteAsset string) ([]market.Symbol, error) {
	return f.symbols, f.listErr
}

func (f *fakeSource) GetCandles(ctx context.Context, s market.Symbol, interval string, limit int) (market.CandleSeries, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.failing[s] {
		return nil, errors.New("http 503")
	}
	return f.series[key(s, interval)], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func closes(values ...float64) market.CandleSeries {
	out := make(market.CandleSeries, len(values))
	for i, v := range values {
		out[i] = market.Candle{Open: v, Close: v}
	}
	return out
}

func moverWindow(open, close float64) market.CandleSeries {
	return market.CandleSeries{{Open: open, Close: open}, {Open: open, Close: close}}
}

func testConfig() ScanConfig {
	cfg := DefaultScanConfig()
	cfg.MoverIntervals = []string{"1h"}
	return cfg
}

func TestScanConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScanConfig)
	}{
		{"empty quote", func(c *ScanConfig) { c.QuoteAsset = " " }},
		{"bad volatility interval", func(c *ScanConfig) { c.VolatilityInterval = "7m" }},
		{"zero volatility limit", func(c *ScanConfig) { c.VolatilityLimit = 0 }},
		{"negative movers limit", func(c *ScanConfig) { c.MoversLimit = -1 }},
		{"zero N", func(c *ScanConfig) { c.TopN = 0 }},
		{"zero K", func(c *ScanConfig) { c.TopK = -1 }},
		{"no intervals", func(c *ScanConfig) { c.MoverIntervals = nil }},
		{"unknown interval", func(c *ScanConfig) { c.MoverIntervals = []string{"1h", "2d"} }},
		{"duplicate interval", func(c *ScanConfig) { c.MoverIntervals = []string{"1h", "4h", "1h"} }},
	}

	require.NoError(t, DefaultScanConfig().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultScanConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), market.ErrInvalidConfig)
		})
	}
}

func TestRunScan_ShortLimitsAreDataExclusions(t *testing.T) {
	cfg := testConfig()
	cfg.VolatilityLimit = 2
	cfg.MoversLimit = 1
	require.NoError(t, cfg.Validate())

	src := &fakeSource{
		symbols: []market.Symbol{"A", "B"},
		series: map[string]market.CandleSeries{
			key("A", "1m"): closes(100, 101),
			key("B", "1m"): closes(50, 52),
			key("A", "1h"): closes(100),
			key("B", "1h"): closes(50),
		},
	}

	orch, err := NewScanOrchestrator(src, cfg, Options{})
	require.NoError(t, err)

	snap, report, err := orch.Scan(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.TopVolatility())
	movers, ok := snap.Movers("1h")
	require.True(t, ok)
	assert.Empty(t, movers.Gainers)
	assert.Empty(t, movers.Losers)
	assert.Equal(t, 4, report.Excluded[market.ExcludedInsufficientData])
	assert.Equal(t, 0, report.FetchFailures)
}

func TestNewScanOrchestrator_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.TopK = 0

	_, err := NewScanOrchestrator(&fakeSource{}, cfg, Options{})
	assert.ErrorIs(t, err, market.ErrInvalidConfig)
}

func TestRunScan_EndToEnd(t *testing.T) {
	src := &fakeSource{
		symbols: []market.Symbol{"A", "B", "C"},
		series: map[string]market.CandleSeries{
			key("A", "1m"): closes(100, 102, 101, 103),
			key("B", "1m"): closes(50, 50, 50, 50),
			key("C", "1m"): closes(10),
			key("A", "1h"): moverWindow(100, 110),
			key("B", "1h"): moverWindow(50, 45),
			key("C", "1h"): moverWindow(0, 10),
		},
	}
	pub := &recordingPublisher{}

	orch, err := NewScanOrchestrator(src, testConfig(), Options{MaxConcurrentRequests: 2, Publisher: pub})
	require.NoError(t, err)

	snap, report, err := orch.Scan(context.Background())

	require.NoError(t, err)
	require.NotNil(t, snap)

	vol := snap.TopVolatility()
	require.Len(t, vol, 2)
	assert.Equal(t, market.Symbol("A"), vol[0].Symbol)
	assert.InDelta(t, 1.715, vol[0].Score, 1e-3)
	assert.Equal(t, market.Symbol("B"), vol[1].Symbol)
	assert.Equal(t, 0.0, vol[1].Score)

	movers, ok := snap.Movers("1h")
	require.True(t, ok)
	require.Len(t, movers.Gainers, 2)
	assert.Equal(t, market.Symbol("A"), movers.Gainers[0].Symbol)
	assert.InDelta(t, 10.0, movers.Gainers[0].ChangePct, 1e-9)
	assert.Equal(t, market.Symbol("B"), movers.Losers[0].Symbol)
	assert.InDelta(t, -10.0, movers.Losers[0].ChangePct, 1e-9)

	assert.Equal(t, StatusCompleted, report.Status)
	assert.Equal(t, 3, report.SymbolCount)
	assert.Equal(t, 0, report.FetchFailures)
	assert.Equal(t, 1, report.Excluded[market.ExcludedInsufficientData])
	assert.Equal(t, 1, report.Excluded[market.ExcludedZeroBase])
	assert.Equal(t, snap.ScanID(), report.ScanID.String())

	assert.Equal(t, []events.EventType{events.EventScanStarted, events.EventScanCompleted}, pub.types())
}

func TestRunScan_SourceErrorIsFatal(t *testing.T) {
	pub := &recordingPublisher{}
	src := &fakeSource{listErr: errors.New("dns failure")}

	orch, err := NewScanOrchestrator(src, testConfig(), Options{Publisher: pub})
	require.NoError(t, err)

	snap, report, err := orch.Scan(context.Background())

	assert.Nil(t, snap)
	var srcErr *market.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "USDT", srcErr.QuoteAsset)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Equal(t, []events.EventType{events.EventScanStarted, events.EventScanFailed}, pub.types())
}

func TestRunScan_PartialFailure(t *testing.T) {
	src := &fakeSource{series: map[string]market.CandleSeries{}, failing: map[market.Symbol]bool{}}
	for i := 0; i < 10; i++ {
		s := market.Symbol(fmt.Sprintf("S%dUSDT", i))
		src.symbols = append(src.symbols, s)
		src.series[key(s, "1m")] = closes(100, 101+float64(i), 99, 102)
		src.series[key(s, "1h")] = moverWindow(100, 100+float64(i))
	}
	for _, i := range []int{2, 5, 8} {
		src.failing[src.symbols[i]] = true
	}

	orch, err := NewScanOrchestrator(src, testConfig(), Options{MaxConcurrentRequests: 3})
	require.NoError(t, err)

	snap, report, err := orch.Scan(context.Background())

	require.NoError(t, err)
	assert.LessOrEqual(t, len(snap.TopVolatility()), 7)
	assert.Equal(t, 6, report.FetchFailures)
	for _, e := range snap.TopVolatility() {
		assert.False(t, src.failing[e.Symbol])
	}
}

func TestRunScan_EmptyUniverse(t *testing.T) {
	orch, err := NewScanOrchestrator(&fakeSource{}, testConfig(), Options{})
	require.NoError(t, err)

	snap, err := orch.RunScan(context.Background())

	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, []string{"1h"}, snap.MoverIntervals())
}

func TestRunScan_CancelledScanIsDiscarded(t *testing.T) {
	pub := &recordingPublisher{}
	src := &fakeSource{symbols: []market.Symbol{"A", "B"}, block: true}

	orch, err := NewScanOrchestrator(src, testConfig(), Options{Publisher: pub})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var (
		snapErr error
		report  ScanReport
		gotSnap bool
	)
	go func() {
		defer close(done)
		snap, r, err := orch.Scan(ctx)
		gotSnap, report, snapErr = snap != nil, r, err
	}()
	cancel()
	<-done

	assert.False(t, gotSnap)
	assert.ErrorIs(t, snapErr, context.Canceled)
	assert.Equal(t, StatusCancelled, report.Status)
	assert.NotContains(t, pub.types(), events.EventScanCompleted)
}

// peakSource считает максимум одновременных GetCandles
type peakSource struct {
	*fakeSource
	inFlight int64
	peak     int64
}

func (p *peakSource) GetCandles(ctx context.Context, s market.Symbol, interval string, limit int) (market.CandleSeries, error) {
	cur := atomic.AddInt64(&p.inFlight, 1)
	defer atomic.AddInt64(&p.inFlight, -1)
	for {
		old := atomic.LoadInt64(&p.peak)
		if cur <= old || atomic.CompareAndSwapInt64(&p.peak, old, cur) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	return p.fakeSource.GetCandles(ctx, s, interval, limit)
}

func TestRunScan_ConcurrencyCapCoversWholeScan(t *testing.T) {
	const maxConcurrent = 2
	src := &peakSource{fakeSource: &fakeSource{}}
	for i := 0; i < 20; i++ {
		src.symbols = append(src.symbols, market.Symbol(fmt.Sprintf("S%dUSDT", i)))
	}

	cfg := DefaultScanConfig()
	require.Greater(t, len(cfg.MoverIntervals), 1)

	orch, err := NewScanOrchestrator(src, cfg, Options{MaxConcurrentRequests: maxConcurrent})
	require.NoError(t, err)

	_, report, err := orch.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.FetchFailures)
	assert.LessOrEqual(t, atomic.LoadInt64(&src.peak), int64(maxConcurrent))
}

func TestRunScan_CancelAfterFetchDropsResult(t *testing.T) {
	pub := &recordingPublisher{}
	src := &fakeSource{
		symbols: []market.Symbol{"A"},
		series: map[string]market.CandleSeries{
			key("A", "1m"): closes(100, 102, 101, 103),
			key("A", "1h"): moverWindow(100, 110),
		},
	}

	orch, err := NewScanOrchestrator(src, testConfig(), Options{Publisher: pub})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// второй вызов now() - отметка завершения после всех загрузок
	var calls int32
	orch.now = func() time.Time {
		if atomic.AddInt32(&calls, 1) == 2 {
			cancel()
		}
		return time.Now()
	}

	snap, report, err := orch.Scan(ctx)

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, report.Status)
	assert.Equal(t, []events.EventType{events.EventScanStarted, events.EventScanFailed}, pub.types())
}

func TestRunScan_KeepsMoverIntervalOrder(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.MoverIntervals = []string{"1d", "15m", "4h"}

	orch, err := NewScanOrchestrator(&fakeSource{symbols: []market.Symbol{"A"}}, cfg, Options{})
	require.NoError(t, err)

	snap, err := orch.RunScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1d", "15m", "4h"}, snap.MoverIntervals())
	assert.Len(t, snap.MoversByInterval(), 3)
}
