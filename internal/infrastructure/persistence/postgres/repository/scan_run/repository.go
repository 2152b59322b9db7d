// /internal/infrastructure/persistence/postgres/repository/scan_run/repository.go
package scan_run_repo

import (
	"context"
	"fmt"

	"crypto-market-scanner/internal/infrastructure/persistence/postgres/models"
	"crypto-market-scanner/pkg/logger"

	"github.com/jmoiron/sqlx"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS scan_runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		finished_at TIMESTAMP WITH TIME ZONE NOT NULL,
		status VARCHAR(16) NOT NULL,
		symbol_count INTEGER NOT NULL DEFAULT 0,
		fetch_failures INTEGER NOT NULL DEFAULT 0,
		excluded INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_scan_runs_started_at ON scan_runs(started_at DESC);
`

type scanRunRepoImpl struct {
	db *sqlx.DB
}

// NewScanRunRepository создаёт реализацию ScanRunRepository
func NewScanRunRepository(db *sqlx.DB) ScanRunRepository {
	return &scanRunRepoImpl{db: db}
}

// Init создает таблицу scan_runs
func (r *scanRunRepoImpl) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("ScanRunRepo.Init: %w", err)
	}
	logger.Info("✅ Таблица scan_runs готова")
	return nil
}

// Save вставляет запись о скане
func (r *scanRunRepoImpl) Save(ctx context.Context, run *models.ScanRun) error {
	query := `
		INSERT INTO scan_runs (id, started_at, finished_at, status, symbol_count, fetch_failures, excluded, error)
		VALUES (:id, :started_at, :finished_at, :status, :symbol_count, :fetch_failures, :excluded, :error)
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("ScanRunRepo.Save: %w", err)
	}

	logger.Debug("💾 Скан %s записан в журнал: %s", run.ID, run.Status)
	return nil
}

// Recent возвращает последние записи
func (r *scanRunRepoImpl) Recent(ctx context.Context, limit int) ([]*models.ScanRun, error) {
	query := `
		SELECT id, started_at, finished_at, status, symbol_count, fetch_failures, excluded, error
		FROM scan_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	var runs []*models.ScanRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("ScanRunRepo.Recent: %w", err)
	}
	return runs, nil
}

// CountByStatus считает записи по статусам
func (r *scanRunRepoImpl) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM scan_runs GROUP BY status`

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ScanRunRepo.CountByStatus: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
