package cache

import (
	"context"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore — кэш снимков в памяти процесса
type MemoryStore struct {
	c *gocache.Cache
}

var _ ports.SnapshotCache = (*MemoryStore)(nil)

// NewMemoryStore создает кэш в памяти. Ключи без Expire живут defaultTTL
// (gocache.NoExpiration — бессрочно), просроченные вычищаются раз в cleanupInterval.
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.c.SetDefault(key, value)
	return nil
}

// Expire переустанавливает значение с новым сроком жизни
func (m *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		m.c.Delete(key)
		return nil
	}
	v, found := m.c.Get(key)
	if !found {
		return nil
	}
	m.c.Set(key, v, ttl)
	return nil
}
