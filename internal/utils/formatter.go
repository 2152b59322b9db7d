// internal/utils/formatter.go
package utils

import (
	"fmt"
	"time"
)

// MarketDataFormatter форматирует значения рейтингов для отображения
type MarketDataFormatter struct{}

// FormatScore форматирует оценку волатильности
func (f *MarketDataFormatter) FormatScore(score float64) string {
	return fmt.Sprintf("%.2f%%", score)
}

// FormatChange форматирует изменение с эмодзи
func (f *MarketDataFormatter) FormatChange(change float64) (string, string) {
	changeStr := fmt.Sprintf("%.2f%%", change)

	var emoji string
	if change > 0 {
		emoji = "🟢"
		changeStr = "+" + changeStr
	} else if change < 0 {
		emoji = "🔴"
	} else {
		emoji = "⚪"
	}

	return emoji, changeStr
}

// FormatTimestamp форматирует время скана в UTC
func (f *MarketDataFormatter) FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
