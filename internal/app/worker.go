package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
)

// runWorker потребляет задачи удаления файлов до отмены ctx
func runWorker(ctx context.Context, queue ports.MediaCleanupConsumer, handler MediaCleanupHandler, logger *slog.Logger) error {
	if queue == nil {
		return fmt.Errorf("очередь удаления файлов не настроена")
	}
	logger.Info("worker started, waiting for media cleanup jobs")

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	messageHandler := func(ctx context.Context, payload payloads.MediaCleanupPayload) error {
		start := time.Now()
		if err := handler(ctx, payload); err != nil {
			logger.Error("media cleanup job failed",
				"image_id", payload.ImageID,
				"public_id", payload.PublicID,
				"error", err,
			)
			return err
		}
		logger.Info("media cleanup job done",
			"image_id", payload.ImageID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	if err := queue.StartConsumingMediaCleanup(workerCtx, messageHandler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping worker")
	return nil
}
