// application/services/orchestrator/config.go
package orchestrator

import (
	"fmt"
	"strings"

	"crypto-market-scanner/internal/core/domain/analysis/movers_analyzer"
	"crypto-market-scanner/internal/core/domain/analysis/volatility_analyzer"
	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/pkg/period"
)

// ScanConfig - параметры одного скана
type ScanConfig struct {
	QuoteAsset         string
	VolatilityInterval string
	VolatilityLimit    int
	MoverIntervals     []string
	MoversLimit        int
	TopN               int
	TopK               int
}

// DefaultScanConfig возвращает параметры по умолчанию: USDT, 1m x 60, 1h/4h/1d, топ 10 и 5
func DefaultScanConfig() ScanConfig {
	intervals, _ := period.ParseList(period.DefaultMoverPeriods)
	return ScanConfig{
		QuoteAsset:         "USDT",
		VolatilityInterval: period.DefaultVolatilityPeriod,
		VolatilityLimit:    60,
		MoverIntervals:     intervals,
		MoversLimit:        2,
		TopN:               volatility_analyzer.DefaultTopN,
		TopK:               movers_analyzer.DefaultTopK,
	}
}

// Validate проверяет конфигурацию. Все ошибки оборачивают market.ErrInvalidConfig.
func (c ScanConfig) Validate() error {
	var problems []string

	if strings.TrimSpace(c.QuoteAsset) == "" {
		problems = append(problems, "quote asset is empty")
	}
	if !period.IsValidPeriod(c.VolatilityInterval) {
		problems = append(problems, fmt.Sprintf("unsupported volatility interval %q", c.VolatilityInterval))
	}
	// Слишком короткие окна допустимы: такие символы уходят в insufficient_data
	if c.VolatilityLimit <= 0 {
		problems = append(problems, "volatility limit must be positive")
	}
	if c.MoversLimit <= 0 {
		problems = append(problems, "movers limit must be positive")
	}
	if c.TopN <= 0 {
		problems = append(problems, "top N must be positive")
	}
	if c.TopK <= 0 {
		problems = append(problems, "top K must be positive")
	}
	if len(c.MoverIntervals) == 0 {
		problems = append(problems, "no mover intervals")
	}

	seen := make(map[string]bool, len(c.MoverIntervals))
	for _, interval := range c.MoverIntervals {
		if !period.IsValidPeriod(interval) {
			problems = append(problems, fmt.Sprintf("unsupported mover interval %q", interval))
		}
		if seen[interval] {
			problems = append(problems, fmt.Sprintf("duplicate mover interval %q", interval))
		}
		seen[interval] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", market.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
