// internal/infrastructure/api/exchanges/binance/client.go
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"unicode/utf8"

	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/internal/infrastructure/config"
)

// BinanceClient - клиент публичного REST API Binance Spot.
// Реализует market.Source, вся конфигурация передается в конструктор.
type BinanceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// NewBinanceClient создает нового клиента для Binance
func NewBinanceClient(cfg config.ExchangeConfig) *BinanceClient {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "CryptoMarketScanner/1.0"
	}

	return &BinanceClient{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
	}
}

// ListSymbols возвращает пары в статусе TRADING для котируемого актива, в порядке биржи
func (c *BinanceClient) ListSymbols(ctx context.Context, quoteAsset string) ([]market.Symbol, error) {
	body, err := c.makeRequest(ctx, exchangeInfoPath, nil)
	if err != nil {
		return nil, err
	}

	var info ExchangeInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse exchangeInfo: %w", err)
	}

	symbols := make([]market.Symbol, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.QuoteAsset == quoteAsset && s.Status == statusTrading {
			symbols = append(symbols, market.Symbol(s.Symbol))
		}
	}
	return symbols, nil
}

// GetCandles загружает до limit последних свечей.
// Любая некорректная строка делает всю серию ошибочной.
func (c *BinanceClient) GetCandles(ctx context.Context, symbol market.Symbol, interval string, limit int) (market.CandleSeries, error) {
	if limit <= 0 || limit > maxKlinesLimit {
		return nil, fmt.Errorf("klines limit %d out of range 1..%d", limit, maxKlinesLimit)
	}

	params := url.Values{}
	params.Set("symbol", string(symbol))
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.makeRequest(ctx, klinesPath, params)
	if err != nil {
		return nil, err
	}

	var rows []Kline
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse klines: %w", err)
	}

	series := make(market.CandleSeries, 0, len(rows))
	for i, row := range rows {
		candle, err := row.ToCandle()
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		series = append(series, candle)
	}
	return series, nil
}

// makeRequest выполняет GET запрос
func (c *BinanceClient) makeRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncateUTF8(string(body), bodySnippetLen)}
	}

	return body, nil
}

// truncateUTF8 обрезает s до n байт, не разрывая многобайтовый символ
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
