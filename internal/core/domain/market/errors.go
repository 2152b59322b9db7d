// internal/core/domain/market/errors.go
package market

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig - конфигурация скана не прошла валидацию
var ErrInvalidConfig = errors.New("invalid scan config")

// SourceError - не удалось получить список торгуемых символов. Фатально для скана.
type SourceError struct {
	QuoteAsset string
	Err        error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("list symbols for %s: %v", e.QuoteAsset, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// FetchError - не удалось загрузить свечи одного символа. Изолируется в пределах символа.
type FetchError struct {
	Symbol   Symbol
	Interval string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Symbol, e.Interval, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExclusionReason - почему символ не попал в рейтинг. Это не ошибка.
type ExclusionReason string

const (
	ExcludedFetchFailed      ExclusionReason = "fetch_failed"
	ExcludedInsufficientData ExclusionReason = "insufficient_data"
	ExcludedZeroBase         ExclusionReason = "zero_base"
	ExcludedNonFinite        ExclusionReason = "non_finite"
)

// Exclusions - счетчики исключений по причинам
type Exclusions map[ExclusionReason]int

// Add увеличивает счетчик причины
func (e Exclusions) Add(reason ExclusionReason) {
	e[reason]++
}

// Total возвращает общее число исключенных символов
func (e Exclusions) Total() int {
	total := 0
	for _, n := range e {
		total += n
	}
	return total
}

// DataExcluded возвращает число исключений по данным, без учета ошибок загрузки
func (e Exclusions) DataExcluded() int {
	return e.Total() - e[ExcludedFetchFailed]
}

// Merge добавляет счетчики other
func (e Exclusions) Merge(other Exclusions) {
	for reason, n := range other {
		e[reason] += n
	}
}
