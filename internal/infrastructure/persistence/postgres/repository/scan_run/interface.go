package scan_run_repo

import (
	"context"

	"crypto-market-scanner/internal/infrastructure/persistence/postgres/models"
)

// ScanRunRepository журнал попыток скана
type ScanRunRepository interface {
	// Init создает таблицу если ее нет
	Init(ctx context.Context) error
	// Save записывает итог скана
	Save(ctx context.Context, run *models.ScanRun) error
	// Recent возвращает последние limit записей, новые первыми
	Recent(ctx context.Context, limit int) ([]*models.ScanRun, error)
	// CountByStatus считает записи по статусам
	CountByStatus(ctx context.Context) (map[string]int, error)
}
