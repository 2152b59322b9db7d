// application/services/orchestrator/subscribers.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-market-scanner/internal/core/domain/snapshot"
	"crypto-market-scanner/internal/infrastructure/persistence/postgres/models"
	events "crypto-market-scanner/internal/infrastructure/transport/event_bus"
	"crypto-market-scanner/pkg/logger"
)

// deliveryTimeout ограничивает доставку одного события всем получателям
const deliveryTimeout = 30 * time.Second

// SnapshotSink - получатель готового снимка (консоль, Redis)
type SnapshotSink interface {
	Name() string
	Deliver(ctx context.Context, snap *snapshot.Snapshot) error
}

// ScanRunSaver - журнал попыток скана
type ScanRunSaver interface {
	Save(ctx context.Context, run *models.ScanRun) error
}

// NewSinkSubscriber рассылает снимки из scan.completed всем получателям.
// Ошибка одного получателя не мешает остальным.
func NewSinkSubscriber(sinks ...SnapshotSink) *events.FuncSubscriber {
	return events.NewPayloadSubscriber(
		"snapshot_sinks",
		[]events.EventType{events.EventScanCompleted},
		func(_ events.Event, data ScanEvent) error {
			if data.Snapshot == nil {
				return fmt.Errorf("snapshot_sinks: scan %s completed without snapshot", data.Report.ScanID)
			}

			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			defer cancel()

			var errs []error
			for _, sink := range sinks {
				if err := sink.Deliver(ctx, data.Snapshot); err != nil {
					logger.Warn("⚠️ %s: не удалось доставить снимок %s: %v", sink.Name(), data.Snapshot.ScanID(), err)
					errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
				}
			}
			return errors.Join(errs...)
		},
	)
}

// NewJournalSubscriber пишет итог каждой попытки скана в журнал
func NewJournalSubscriber(repo ScanRunSaver) *events.FuncSubscriber {
	return events.NewPayloadSubscriber(
		"scan_journal",
		[]events.EventType{events.EventScanCompleted, events.EventScanFailed},
		func(_ events.Event, data ScanEvent) error {
			ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
			defer cancel()

			return repo.Save(ctx, ToScanRun(data.Report))
		},
	)
}

// ToScanRun переводит сводку в запись журнала
func ToScanRun(r ScanReport) *models.ScanRun {
	run := &models.ScanRun{
		ID:            r.ScanID,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Status:        r.Status,
		SymbolCount:   r.SymbolCount,
		FetchFailures: r.FetchFailures,
		Excluded:      r.Excluded.DataExcluded(),
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}
	return run
}
