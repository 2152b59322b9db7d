// application/services/orchestrator/report.go
package orchestrator

import (
	"time"

	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/internal/core/domain/snapshot"

	"github.com/google/uuid"
)

// Статусы завершения скана
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// ScanReport - сводка о попытке скана для логов, событий и журнала
type ScanReport struct {
	ScanID        uuid.UUID
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        string
	SymbolCount   int
	FetchFailures int
	Excluded      market.Exclusions
	Err           error
}

// Elapsed возвращает длительность скана
func (r ScanReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// ScanEvent - данные событий scan.*
type ScanEvent struct {
	Report   ScanReport
	Snapshot *snapshot.Snapshot
}
