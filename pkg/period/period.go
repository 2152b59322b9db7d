// pkg/period/period.go
package period

import (
	"fmt"
	"strings"
	"time"
)

// IsValidPeriod проверяет, является ли период поддерживаемым интервалом свечей
func IsValidPeriod(period string) bool {
	_, ok := periodDurations[period]
	return ok
}

// StringToDuration конвертирует строковый период в time.Duration с проверкой ошибки
func StringToDuration(period string) (time.Duration, error) {
	d, ok := periodDurations[period]
	if !ok {
		return 0, fmt.Errorf("неизвестный период: %s", period)
	}
	return d, nil
}

// PeriodToDuration конвертирует период в time.Duration, для неизвестных возвращает 0
func PeriodToDuration(period string) time.Duration {
	return periodDurations[period]
}

// ParseList разбирает список периодов вида "1h, 4h,1d".
// Порядок сохраняется, пустые элементы пропускаются, регистр приводится к нижнему.
func ParseList(value string) ([]string, error) {
	var result []string
	if strings.TrimSpace(value) == "" {
		return result, nil
	}

	for _, part := range strings.Split(value, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		if !IsValidPeriod(p) {
			return nil, fmt.Errorf("неизвестный период: %s", p)
		}
		result = append(result, p)
	}
	return result, nil
}

// FormatPeriodForDisplay форматирует период для заголовков отчета
func FormatPeriodForDisplay(period string) string {
	return strings.ToUpper(period)
}
