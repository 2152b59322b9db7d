package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/internal/core/domain/snapshot"
	"crypto-market-scanner/internal/infrastructure/persistence/postgres/models"
	events "crypto-market-scanner/internal/infrastructure/transport/event_bus"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	name string
	err  error

	mu    sync.Mutex
	snaps []*snapshot.Snapshot
}

func (m *memorySink) Name() string { return m.name }

func (m *memorySink) Deliver(ctx context.Context, snap *snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return m.err
}

type memoryJournal struct {
	runs []*models.ScanRun
}

func (j *memoryJournal) Save(ctx context.Context, run *models.ScanRun) error {
	j.runs = append(j.runs, run)
	return nil
}

func TestSinkSubscriber_DeliversToAllSinks(t *testing.T) {
	broken := &memorySink{name: "broken", err: errors.New("redis down")}
	console := &memorySink{name: "console"}

	bus := events.NewEventBus()
	bus.SubscribeAll(NewSinkSubscriber(broken, console))

	snap := snapshot.New("id-1", time.Now(), nil, []string{"1h"}, nil)
	err := bus.PublishSync(events.Event{
		Type:   events.EventScanCompleted,
		Source: "test",
		Data:   ScanEvent{Snapshot: snap},
	})

	assert.Error(t, err)
	require.Len(t, console.snaps, 1)
	assert.Same(t, snap, console.snaps[0])
	assert.Len(t, broken.snaps, 1)
}

func TestSinkSubscriber_IgnoresFailedScans(t *testing.T) {
	sink := &memorySink{name: "console"}

	bus := events.NewEventBus()
	bus.SubscribeAll(NewSinkSubscriber(sink))

	require.NoError(t, bus.PublishSync(events.Event{Type: events.EventScanFailed, Source: "test", Data: ScanEvent{}}))
	assert.Empty(t, sink.snaps)
}

func TestJournalSubscriber_RecordsOutcomes(t *testing.T) {
	journal := &memoryJournal{}
	bus := events.NewEventBus()
	bus.SubscribeAll(NewJournalSubscriber(journal))

	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	completed := ScanReport{
		ScanID: uuid.New(), StartedAt: started, FinishedAt: started.Add(time.Second),
		Status: StatusCompleted, SymbolCount: 300, FetchFailures: 4,
		Excluded: market.Exclusions{market.ExcludedFetchFailed: 4, market.ExcludedInsufficientData: 7},
	}
	failed := ScanReport{
		ScanID: uuid.New(), StartedAt: started, FinishedAt: started,
		Status: StatusFailed, Excluded: market.Exclusions{},
		Err: &market.SourceError{QuoteAsset: "USDT", Err: errors.New("timeout")},
	}

	require.NoError(t, bus.PublishSync(events.Event{Type: events.EventScanCompleted, Source: "test", Data: ScanEvent{Report: completed}}))
	require.NoError(t, bus.PublishSync(events.Event{Type: events.EventScanFailed, Source: "test", Data: ScanEvent{Report: failed}}))

	require.Len(t, journal.runs, 2)
	assert.Equal(t, completed.ScanID, journal.runs[0].ID)
	assert.Equal(t, models.ScanStatusCompleted, journal.runs[0].Status)
	assert.Equal(t, 7, journal.runs[0].Excluded)
	assert.Equal(t, 4, journal.runs[0].FetchFailures)
	assert.Empty(t, journal.runs[0].Error)

	assert.Equal(t, models.ScanStatusFailed, journal.runs[1].Status)
	assert.Equal(t, "list symbols for USDT: timeout", journal.runs[1].Error)
}
