package ports

import (
	"context"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
)

// SnapshotCache — k/v хранилище снимков с TTL. Не является источником истины.
type SnapshotCache interface {
	// Get возвращает found == false при отсутствии или истечении ключа
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Expire задает время жизни ключа; ttl <= 0 удаляет ключ
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ImageSnapshots — синхронизатор снимков изображений поверх SnapshotCache
type ImageSnapshots interface {
	Refresh(ctx context.Context, image *domain.Image) error
	Load(ctx context.Context, id uuid.UUID) (*domain.Image, bool)
	Evict(ctx context.Context, id uuid.UUID) error
}
