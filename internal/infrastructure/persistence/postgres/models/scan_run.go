// internal/infrastructure/persistence/postgres/models/scan_run.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы попытки скана
const (
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
	ScanStatusCancelled = "cancelled"
)

// ScanRun - итог одной попытки скана. Рейтинги не хранятся.
type ScanRun struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	StartedAt     time.Time `db:"started_at"     json:"started_at"`
	FinishedAt    time.Time `db:"finished_at"    json:"finished_at"`
	Status        string    `db:"status"         json:"status"`
	SymbolCount   int       `db:"symbol_count"   json:"symbol_count"`
	FetchFailures int       `db:"fetch_failures" json:"fetch_failures"`
	Excluded      int       `db:"excluded"       json:"excluded"`
	Error         string    `db:"error"          json:"error"`
}

// Duration возвращает длительность скана
func (r *ScanRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
