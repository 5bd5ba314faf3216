package ports

import (
	"context"

	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
)

// MediaCleanupPublisher публикует задачи на удаление файлов удаленных изображений
type MediaCleanupPublisher interface {
	PublishMediaCleanup(ctx context.Context, payload payloads.MediaCleanupPayload) error
}

// MediaCleanupConsumer используется воркером для получения задач из очереди
type MediaCleanupConsumer interface {
	StartConsumingMediaCleanup(ctx context.Context, handler func(context.Context, payloads.MediaCleanupPayload) error) error
}
