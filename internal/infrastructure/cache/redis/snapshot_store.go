// internal/infrastructure/cache/redis/snapshot_store.go
package redis

import (
	"context"
	"fmt"
	"time"

	"crypto-market-scanner/internal/core/domain/snapshot"
)

const (
	latestSnapshotKey = "snapshot:latest"

	// DefaultSnapshotTTL - время жизни последнего снимка по умолчанию
	DefaultSnapshotTTL = 15 * time.Minute
)

// SnapshotStore хранит только последний снимок скана для внешних дисплеев.
// История не ведется.
type SnapshotStore struct {
	cache *Cache
	ttl   time.Duration
}

// NewSnapshotStore создает хранилище последнего снимка
func NewSnapshotStore(cache *Cache, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotStore{cache: cache, ttl: ttl}
}

// Name возвращает имя получателя снимков
func (s *SnapshotStore) Name() string {
	return "redis_snapshot_store"
}

// Deliver перезаписывает последний снимок
func (s *SnapshotStore) Deliver(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := s.cache.Set(ctx, latestSnapshotKey, snap, s.ttl); err != nil {
		return fmt.Errorf("SnapshotStore.Deliver: %w", err)
	}
	return nil
}

// Latest возвращает последний снимок; (nil, nil) если его нет или срок истек
func (s *SnapshotStore) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := s.cache.Get(ctx, latestSnapshotKey, &snap); err != nil {
		if IsMiss(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("SnapshotStore.Latest: %w", err)
	}
	return &snap, nil
}
