// internal/infrastructure/api/exchanges/binance/types.go
package binance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"crypto-market-scanner/internal/core/domain/market"
)

const (
	exchangeInfoPath = "/api/v3/exchangeInfo"
	klinesPath       = "/api/v3/klines"

	statusTrading = "TRADING"

	// maxKlinesLimit - ограничение Binance на одну выборку свечей
	maxKlinesLimit = 1000

	// bodySnippetLen - сколько байт тела ответа попадает в текст ошибки
	bodySnippetLen = 200
)

// ExchangeInfoResponse - ответ /api/v3/exchangeInfo (нужные поля)
type ExchangeInfoResponse struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo - описание торговой пары
type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// Kline - строка ответа /api/v3/klines:
// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
type Kline []json.RawMessage

// ToCandle разбирает строку свечи. Цены приходят десятичными строками.
func (k Kline) ToCandle() (market.Candle, error) {
	if len(k) < 6 {
		return market.Candle{}, fmt.Errorf("kline has %d fields, want at least 6", len(k))
	}

	var openTime int64
	if err := json.Unmarshal(k[0], &openTime); err != nil {
		return market.Candle{}, fmt.Errorf("open time: %w", err)
	}

	var prices [5]float64
	for i := range prices {
		v, err := parseDecimal(k[i+1])
		if err != nil {
			return market.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		prices[i] = v
	}

	return market.Candle{
		OpenTime: time.UnixMilli(openTime).UTC(),
		Open:     prices[0],
		High:     prices[1],
		Low:      prices[2],
		Close:    prices[3],
		Volume:   prices[4],
	}, nil
}

func parseDecimal(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("expected decimal string, got %s", string(raw))
	}
	return strconv.ParseFloat(s, 64)
}

// APIError - ответ Binance с HTTP статусом отличным от 200
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API returned status %d: %s", e.StatusCode, e.Body)
}
