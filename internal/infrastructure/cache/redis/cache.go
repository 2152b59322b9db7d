// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultPrefix - общий префикс ключей сканера
const DefaultPrefix = "scanner:"

// ErrCorrupted - значение в Redis не удалось декодировать
var ErrCorrupted = errors.New("corrupted cache entry")

// Cache - JSON обертка над Redis с префиксом ключей
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCacheWithClient создает Cache с префиксом DefaultPrefix
func NewCacheWithClient(client *redis.Client) *Cache {
	return NewCacheWithPrefix(client, DefaultPrefix)
}

// NewCacheWithPrefix создает Cache с заданным префиксом ключей
func NewCacheWithPrefix(client *redis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix}
}

// Key возвращает полный ключ Redis с префиксом
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

// Set устанавливает значение в Redis с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	return c.client.Set(ctx, c.Key(key), data, ttl).Err()
}

// Get получает значение из Redis. Отсутствие ключа возвращает redis.Nil.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupted, key, err)
	}
	return nil
}

// Delete удаляет ключ из Redis
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.Key(key)).Err()
}

// IsMiss возвращает true если ошибка означает отсутствие ключа
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
