// internal/core/domain/market/types.go
package market

import (
	"context"
	"time"
)

// Symbol - идентификатор торговой пары, например BTCUSDT
type Symbol string

// Candle - OHLC запись за один интервал
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// CandleSeries - свечи одного символа и интервала, по возрастанию времени.
// Может быть короче запрошенного лимита.
type CandleSeries []Candle

// Closes возвращает цены закрытия серии
func (s CandleSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

// Source - поставщик рыночных данных (биржевой REST API)
type Source interface {
	// ListSymbols возвращает торгуемые символы для котируемого актива в порядке биржи
	ListSymbols(ctx context.Context, quoteAsset string) ([]Symbol, error)

	// GetCandles возвращает до limit последних свечей символа
	GetCandles(ctx context.Context, symbol Symbol, interval string, limit int) (CandleSeries, error)
}
