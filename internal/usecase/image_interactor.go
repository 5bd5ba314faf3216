package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
	"github.com/GoArmGo/PhotoShare/internal/metrics"
	"github.com/GoArmGo/PhotoShare/internal/validation"
	"github.com/google/uuid"
)

// imageUseCase реализует ImageUseCase
type imageUseCase struct {
	images    ports.ImageStorage
	tags      ports.TagStorage
	media     ports.MediaHost
	snapshots ports.ImageSnapshots
	cleanup   ports.MediaCleanupPublisher
	gate      *access.Gate
	logger    *slog.Logger
}

// NewImageUseCase создает сценарии работы с изображениями.
// Если cleanup == nil, файл удаляется с медиа-хостинга синхронно.
func NewImageUseCase(
	images ports.ImageStorage,
	tags ports.TagStorage,
	media ports.MediaHost,
	snapshots ports.ImageSnapshots,
	cleanup ports.MediaCleanupPublisher,
	gate *access.Gate,
	logger *slog.Logger,
) ImageUseCase {
	return &imageUseCase{
		images:    images,
		tags:      tags,
		media:     media,
		snapshots: snapshots,
		cleanup:   cleanup,
		gate:      gate,
		logger:    logger,
	}
}

// refresh обновляет снимок после коммита. Сбой не отменяет мутацию:
// снимок останется устаревшим до истечения TTL.
func (uc *imageUseCase) refresh(ctx context.Context, image *domain.Image) {
	if err := uc.snapshots.Refresh(ctx, image); err != nil {
		metrics.ImageCacheRefreshErrors.Inc()
		uc.logger.Error("failed to refresh image snapshot", "image_id", image.ID, "error", err)
	}
}

// uniqueTagTitles нормализует названия и убирает повторы, сохраняя порядок
func uniqueTagTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = NormalizeTagTitle(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (uc *imageUseCase) Create(ctx context.Context, file io.Reader, fileName, contentType string, payload ImagePayload, p domain.Principal) (*domain.Image, error) {
	if err := uc.gate.Require(access.OpImageCreate, p); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}

	titles := uniqueTagTitles(payload.Tags)
	if len(titles) > domain.MaxTagsPerImage {
		metrics.TagCapacityRejections.Inc()
		return nil, fmt.Errorf("usecase: %d тегов: %w", len(titles), domain.ErrCapacityExceeded)
	}

	object, err := uc.media.Upload(ctx, file, p.Username, fileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка загрузки файла %s: %w", fileName, err)
	}

	image := &domain.Image{
		UserID:      p.ID,
		URL:         object.URL,
		PublicID:    object.PublicID,
		Description: payload.Description,
	}
	for _, title := range titles {
		tag, err := resolveOrCreateTag(ctx, uc.tags, title, p)
		if err != nil {
			uc.discardUpload(ctx, object.PublicID)
			return nil, err
		}
		image.Tags = append(image.Tags, *tag)
	}

	if err := uc.images.CreateImage(ctx, image); err != nil {
		uc.discardUpload(ctx, object.PublicID)
		return nil, fmt.Errorf("usecase: ошибка при сохранении изображения: %w", err)
	}

	uc.refresh(ctx, image)
	return image, nil
}

// discardUpload удаляет файл, для которого не удалось создать запись
func (uc *imageUseCase) discardUpload(ctx context.Context, publicID string) {
	if err := uc.media.DeleteByPublicID(ctx, publicID); err != nil {
		uc.logger.Error("failed to discard orphan upload", "public_id", publicID, "error", err)
	}
}

// Get возвращает снимок из кэша, а при промахе — запись из бд.
// Прочитанная из бд запись в кэш не кладется.
func (uc *imageUseCase) Get(ctx context.Context, imageID uuid.UUID, p domain.Principal) (*domain.Image, error) {
	if err := uc.gate.Require(access.OpImageRead, p); err != nil {
		return nil, err
	}

	if image, ok := uc.snapshots.Load(ctx, imageID); ok {
		return image, nil
	}

	image, err := uc.images.GetImageByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображения %s: %w", imageID, err)
	}
	return image, nil
}

func (uc *imageUseCase) ListByUser(ctx context.Context, userID uuid.UUID, p domain.Principal) ([]domain.Image, error) {
	if err := uc.gate.Require(access.OpImageRead, p); err != nil {
		return nil, err
	}

	images, err := uc.images.ListImagesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображений пользователя %s: %w", userID, err)
	}
	return images, nil
}

// loadOwned проверяет доступ и загружает изображение ожидаемого владельца
func (uc *imageUseCase) loadOwned(ctx context.Context, op access.Operation, imageID, ownerID uuid.UUID, p domain.Principal) (*domain.Image, error) {
	if err := uc.gate.RequireOwnerOr(op, p, ownerID == p.ID); err != nil {
		return nil, err
	}

	image, err := uc.images.GetOwnedImage(ctx, imageID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображения %s: %w", imageID, err)
	}
	return image, nil
}

// Transform последовательно применяет профили к URL изображения
func (uc *imageUseCase) Transform(ctx context.Context, imageID, ownerID uuid.UUID, profiles []string, p domain.Principal) (*domain.Image, error) {
	image, err := uc.loadOwned(ctx, access.OpImageUpdate, imageID, ownerID, p)
	if err != nil || image == nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return image, nil
	}

	url := image.URL
	for _, profile := range profiles {
		url, err = uc.media.Transform(url, profile)
		if err != nil {
			return nil, fmt.Errorf("usecase: %w: %v", domain.ErrValidation, err)
		}
	}

	image.URL = url
	if err := uc.images.UpdateImage(ctx, image); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении изображения %s: %w", imageID, err)
	}
	return image, nil
}

func (uc *imageUseCase) SetURL(ctx context.Context, imageID, ownerID uuid.UUID, payload URLPayload, p domain.Principal) (*domain.Image, error) {
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}
	image, err := uc.loadOwned(ctx, access.OpImageUpdate, imageID, ownerID, p)
	if err != nil || image == nil {
		return nil, err
	}

	image.URL = payload.URL
	if err := uc.images.UpdateImage(ctx, image); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении изображения %s: %w", imageID, err)
	}
	return image, nil
}

func (uc *imageUseCase) PatchDescription(ctx context.Context, imageID, ownerID uuid.UUID, payload DescriptionPayload, p domain.Principal) (*domain.Image, error) {
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}
	image, err := uc.loadOwned(ctx, access.OpImageUpdate, imageID, ownerID, p)
	if err != nil || image == nil {
		return nil, err
	}

	image.Description = payload.Description
	if err := uc.images.UpdateImage(ctx, image); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении изображения %s: %w", imageID, err)
	}
	return image, nil
}

// Delete удаляет запись, снимок и ставит удаление файла в очередь
func (uc *imageUseCase) Delete(ctx context.Context, imageID, ownerID uuid.UUID, p domain.Principal) (*domain.Image, error) {
	image, err := uc.loadOwned(ctx, access.OpImageDelete, imageID, ownerID, p)
	if err != nil || image == nil {
		return nil, err
	}

	if err := uc.images.DeleteImage(ctx, image); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при удалении изображения %s: %w", imageID, err)
	}

	if err := uc.snapshots.Evict(ctx, image.ID); err != nil {
		uc.logger.Error("failed to evict image snapshot", "image_id", image.ID, "error", err)
	}
	uc.removeMedia(ctx, image)
	return image, nil
}

func (uc *imageUseCase) removeMedia(ctx context.Context, image *domain.Image) {
	if image.PublicID == "" {
		return
	}
	if uc.cleanup == nil {
		uc.discardUpload(ctx, image.PublicID)
		return
	}
	payload := payloads.MediaCleanupPayload{ImageID: image.ID.String(), PublicID: image.PublicID}
	if err := uc.cleanup.PublishMediaCleanup(ctx, payload); err != nil {
		uc.logger.Error("failed to enqueue media cleanup", "image_id", image.ID, "error", err)
	}
}

// AttachTag прикрепляет тег к изображению ownerID. Уже прикрепленный тег — успешный no-op;
// при заполненном наборе возвращается domain.ErrCapacityExceeded.
func (uc *imageUseCase) AttachTag(ctx context.Context, imageID, ownerID uuid.UUID, title string, p domain.Principal) (*domain.Image, error) {
	if err := uc.gate.RequireOwnerOr(access.OpImageTag, p, ownerID == p.ID); err != nil {
		return nil, err
	}

	tag, err := resolveOrCreateTag(ctx, uc.tags, title, p)
	if err != nil {
		return nil, err
	}

	image, err := uc.images.GetOwnedImage(ctx, imageID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображения %s: %w", imageID, err)
	}
	if image == nil {
		return nil, nil
	}

	changed, err := uc.images.AttachTag(ctx, image.ID, ownerID, tag.ID, domain.MaxTagsPerImage)
	if errors.Is(err, domain.ErrCapacityExceeded) {
		metrics.TagCapacityRejections.Inc()
		uc.logger.Info("tag attach rejected", "image_id", imageID, "tag", tag.Title)
		return nil, fmt.Errorf("usecase: изображение %s: %w", imageID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	if !changed {
		return image, nil
	}

	return uc.reloadAndRefresh(ctx, image)
}

// DetachTag открепляет тег. Тег ищется без создания; отсутствующий тег — no-op.
func (uc *imageUseCase) DetachTag(ctx context.Context, imageID, ownerID uuid.UUID, title string, p domain.Principal) (*domain.Image, error) {
	if err := uc.gate.RequireOwnerOr(access.OpImageTag, p, ownerID == p.ID); err != nil {
		return nil, err
	}

	tag, err := uc.tags.GetTagByTitle(ctx, NormalizeTagTitle(title))
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при поиске тега: %w", err)
	}

	image, err := uc.images.GetOwnedImage(ctx, imageID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображения %s: %w", imageID, err)
	}
	if image == nil || tag == nil {
		return image, nil
	}

	changed, err := uc.images.DetachTag(ctx, image.ID, ownerID, tag.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	if !changed {
		return image, nil
	}

	return uc.reloadAndRefresh(ctx, image)
}

// reloadAndRefresh перечитывает изображение с актуальным набором тегов и обновляет снимок
func (uc *imageUseCase) reloadAndRefresh(ctx context.Context, image *domain.Image) (*domain.Image, error) {
	fresh, err := uc.images.GetImageByID(ctx, image.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при перечитывании изображения %s: %w", image.ID, err)
	}
	if fresh == nil {
		return nil, nil
	}
	uc.refresh(ctx, fresh)
	return fresh, nil
}
