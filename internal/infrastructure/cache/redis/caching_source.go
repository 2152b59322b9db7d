// internal/infrastructure/cache/redis/caching_source.go
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"crypto-market-scanner/internal/core/domain/market"
	"crypto-market-scanner/pkg/logger"
)

// DefaultSymbolsTTL - время жизни списка символов по умолчанию
const DefaultSymbolsTTL = time.Hour

// CachingSource кэширует список символов в Redis.
// Свечи не кэшируются: это живые данные скана.
type CachingSource struct {
	inner market.Source
	cache *Cache
	ttl   time.Duration
}

// NewCachingSource оборачивает источник. При cache == nil работает как прокси.
func NewCachingSource(inner market.Source, cache *Cache, ttl time.Duration) *CachingSource {
	if ttl <= 0 {
		ttl = DefaultSymbolsTTL
	}
	return &CachingSource{inner: inner, cache: cache, ttl: ttl}
}

// ListSymbols сначала читает кэш, при промахе или ошибке Redis идет в биржу
func (s *CachingSource) ListSymbols(ctx context.Context, quoteAsset string) ([]market.Symbol, error) {
	if s.cache == nil {
		return s.inner.ListSymbols(ctx, quoteAsset)
	}

	key := symbolsKey(quoteAsset)

	var cached []market.Symbol
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil && len(cached) > 0:
		logger.Debug("💾 Символы %s из кэша: %d", quoteAsset, len(cached))
		return cached, nil
	case err == nil:
	case IsMiss(err):
	default:
		if errors.Is(err, ErrCorrupted) {
			_ = s.cache.Delete(ctx, key)
		}
		logger.Warn("⚠️ Кэш символов недоступен: %v", err)
	}

	symbols, err := s.inner.ListSymbols(ctx, quoteAsset)
	if err != nil {
		return nil, err
	}

	if len(symbols) > 0 {
		if err := s.cache.Set(ctx, key, symbols, s.ttl); err != nil {
			logger.Warn("⚠️ Не удалось сохранить символы в кэш: %v", err)
		}
	}
	return symbols, nil
}

// GetCandles всегда обращается к источнику
func (s *CachingSource) GetCandles(ctx context.Context, symbol market.Symbol, interval string, limit int) (market.CandleSeries, error) {
	return s.inner.GetCandles(ctx, symbol, interval, limit)
}

func symbolsKey(quoteAsset string) string {
	return "symbols:" + strings.ToUpper(quoteAsset)
}
