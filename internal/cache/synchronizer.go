// Package cache держит снимки изображений (вместе с тегами) в k/v кэше.
// Кэш не является источником истины: снимок обновляется после коммита
// мутации и может ненадолго отставать от бд.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/metrics"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ImageKey возвращает ключ снимка изображения
func ImageKey(id uuid.UUID) string {
	return "image:" + id.String()
}

// ImageCache синхронизирует снимки изображений с бэкендом кэша
type ImageCache struct {
	store  ports.SnapshotCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewImageCache(store ports.SnapshotCache, ttl time.Duration, logger *slog.Logger) *ImageCache {
	return &ImageCache{store: store, ttl: ttl, logger: logger}
}

// Refresh записывает снимок изображения и выставляет ему TTL
func (c *ImageCache) Refresh(ctx context.Context, image *domain.Image) error {
	start := time.Now()
	key := ImageKey(image.ID)

	data, err := json.Marshal(image)
	if err != nil {
		return fmt.Errorf("ошибка сериализации снимка %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("ошибка записи снимка %s: %w", key, err)
	}
	if err := c.store.Expire(ctx, key, c.ttl); err != nil {
		return fmt.Errorf("ошибка установки TTL снимка %s: %w", key, err)
	}

	c.logger.Debug("image snapshot refreshed",
		"key", key,
		"tags", len(image.Tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Load возвращает снимок из кэша. Промах, ошибка бэкенда и нечитаемый снимок
// возвращаются как found == false, чтобы вызывающий сходил в бд.
func (c *ImageCache) Load(ctx context.Context, id uuid.UUID) (*domain.Image, bool) {
	key := ImageKey(id)

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("image cache lookup failed", "key", key, "error", err)
		metrics.RecordCacheLookup("error")
		return nil, false
	}
	if !found {
		metrics.RecordCacheLookup("miss")
		return nil, false
	}

	var image domain.Image
	if err := json.Unmarshal(data, &image); err != nil {
		c.logger.Warn("image snapshot is unreadable", "key", key, "error", err)
		metrics.RecordCacheLookup("error")
		return nil, false
	}

	metrics.RecordCacheLookup("hit")
	return &image, true
}

// Evict удаляет снимок изображения
func (c *ImageCache) Evict(ctx context.Context, id uuid.UUID) error {
	if err := c.store.Expire(ctx, ImageKey(id), 0); err != nil {
		return fmt.Errorf("ошибка удаления снимка %s: %w", ImageKey(id), err)
	}
	return nil
}
