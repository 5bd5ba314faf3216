package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
)

// NewMediaCleanupHandler возвращает обработчик задач очереди очистки:
// удаляет файл удаленного изображения с медиа-хостинга.
func NewMediaCleanupHandler(media ports.MediaHost, logger *slog.Logger) func(context.Context, payloads.MediaCleanupPayload) error {
	return func(ctx context.Context, payload payloads.MediaCleanupPayload) error {
		if err := media.DeleteByPublicID(ctx, payload.PublicID); err != nil {
			return fmt.Errorf("usecase: ошибка удаления файла изображения %s: %w", payload.ImageID, err)
		}
		logger.Info("media removed", "image_id", payload.ImageID, "public_id", payload.PublicID)
		return nil
	}
}
