// internal/infrastructure/cache/redis/redis_service.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crypto-market-scanner/internal/infrastructure/config"
	"crypto-market-scanner/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 5 * time.Second

// ErrAlreadyRunning - повторный Start без Stop
var ErrAlreadyRunning = errors.New("redis service already running")

// ServiceState - состояние подключения
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateError    ServiceState = "error"
)

// RedisService владеет клиентом Redis: кэш символов и последний снимок
// работают поверх одного пула соединений
type RedisService struct {
	mu     sync.RWMutex
	cfg    config.RedisConfig
	client *redis.Client
	cache  *Cache
	state  ServiceState
}

// NewRedisService создает сервис; подключение выполняет Start
func NewRedisService(cfg config.RedisConfig) *RedisService {
	return &RedisService{cfg: cfg, state: StateStopped}
}

// Options строит параметры клиента из конфигурации
func (rs *RedisService) Options() *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", rs.cfg.Host, rs.cfg.Port),
		Password:     rs.cfg.Password,
		DB:           rs.cfg.DB,
		PoolSize:     rs.cfg.PoolSize,
		MinIdleConns: rs.cfg.MinIdleConns,
		MaxRetries:   rs.cfg.MaxRetries,
		DialTimeout:  rs.cfg.DialTimeout,
		ReadTimeout:  rs.cfg.ReadTimeout,
		WriteTimeout: rs.cfg.WriteTimeout,
	}
}

// Start подключается и проверяет соединение PING
func (rs *RedisService) Start(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state == StateRunning {
		return ErrAlreadyRunning
	}
	rs.state = StateStarting

	opts := rs.Options()
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	logger.Info("📡 Подключение к Redis %s (DB %d)", opts.Addr, opts.DB)
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		rs.state = StateError
		return fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	rs.client = client
	rs.cache = NewCacheWithPrefix(client, rs.cfg.KeyPrefix)
	rs.state = StateRunning
	logger.Info("✅ Redis подключен, префикс ключей %q", rs.cache.prefix)
	return nil
}

// Stop закрывает клиент. Без Start ничего не делает.
func (rs *RedisService) Stop() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.state != StateRunning {
		return nil
	}

	err := rs.client.Close()
	rs.client, rs.cache = nil, nil
	rs.state = StateStopped
	if err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	logger.Info("🛑 Redis отключен")
	return nil
}

// GetClient возвращает клиент или nil, если сервис не запущен
func (rs *RedisService) GetClient() *redis.Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.client
}

// Cache возвращает кэш поверх клиента или nil, если сервис не запущен
func (rs *RedisService) Cache() *Cache {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.cache
}

// State возвращает состояние сервиса
func (rs *RedisService) State() ServiceState {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.state
}
