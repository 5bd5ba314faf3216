package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageStorage реализует ports.ImageStorage с помощью GORM
type ImageStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewImageStorage(db *gorm.DB, logger *slog.Logger) *ImageStorage {
	return &ImageStorage{db: db, logger: logger}
}

func preloadTags(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("tags.title")
	})
}

// CreateImage сохраняет изображение вместе со связями на уже существующие теги
func (s *ImageStorage) CreateImage(ctx context.Context, image *domain.Image) error {
	start := time.Now()

	image.TagCount = len(image.Tags)
	err := s.db.WithContext(ctx).
		Omit("Tags.*").
		Create(image).Error
	if err != nil {
		s.logger.Error("failed to create image", "user_id", image.UserID, "error", err)
		return fmt.Errorf("ошибка при сохранении изображения: %w", err)
	}

	s.logger.Info("image created",
		"id", image.ID,
		"user_id", image.UserID,
		"tags", image.TagCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetImageByID получает изображение с тегами по ID
func (s *ImageStorage) GetImageByID(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	return s.first(ctx, "id = ?", id)
}

// GetOwnedImage получает изображение, только если оно принадлежит ownerID.
// Чужое и несуществующее изображение неразличимы.
func (s *ImageStorage) GetOwnedImage(ctx context.Context, id, ownerID uuid.UUID) (*domain.Image, error) {
	return s.first(ctx, "id = ? AND user_id = ?", id, ownerID)
}

func (s *ImageStorage) first(ctx context.Context, query string, args ...interface{}) (*domain.Image, error) {
	start := time.Now()

	var image domain.Image
	err := preloadTags(s.db.WithContext(ctx)).Where(query, args...).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("image not found", "query", query, "args", args)
			return nil, nil
		}
		s.logger.Error("failed to get image", "query", query, "args", args, "error", err)
		return nil, fmt.Errorf("ошибка при получении изображения: %w", err)
	}

	s.logger.Debug("image retrieved",
		"id", image.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &image, nil
}

// ListImagesByUser получает все изображения пользователя, новые первыми
func (s *ImageStorage) ListImagesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Image, error) {
	start := time.Now()

	var images []domain.Image
	err := preloadTags(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&images).Error
	if err != nil {
		s.logger.Error("failed to list user images", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении изображений пользователя: %w", err)
	}

	s.logger.Info("listed user images",
		"user_id", userID,
		"count", len(images),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return images, nil
}

// UpdateImage сохраняет URL и описание изображения
func (s *ImageStorage) UpdateImage(ctx context.Context, image *domain.Image) error {
	start := time.Now()

	err := s.db.WithContext(ctx).
		Model(image).
		Select("url", "public_id", "description", "updated_at").
		Updates(image).Error
	if err != nil {
		s.logger.Error("failed to update image", "id", image.ID, "error", err)
		return fmt.Errorf("ошибка при обновлении изображения: %w", err)
	}

	s.logger.Info("image updated", "id", image.ID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// DeleteImage удаляет изображение и его связи с тегами
func (s *ImageStorage) DeleteImage(ctx context.Context, image *domain.Image) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", image.ID).Delete(&domain.ImageTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Image{}, "id = ?", image.ID).Error
	})
	if err != nil {
		s.logger.Error("failed to delete image", "id", image.ID, "error", err)
		return fmt.Errorf("ошибка при удалении изображения: %w", err)
	}

	s.logger.Info("image deleted", "id", image.ID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// AttachTag вставляет связь и увеличивает счетчик тегов одним охранным UPDATE.
// Условие tag_count < limit проверяется и применяется в одном обращении к бд,
// поэтому конкурентные вызовы не могут превысить лимит.
func (s *ImageStorage) AttachTag(ctx context.Context, imageID, ownerID, tagID uuid.UUID, limit int) (bool, error) {
	start := time.Now()
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.ImageTag{ImageID: imageID, TagID: tagID})
		if link.Error != nil {
			return link.Error
		}
		if link.RowsAffected == 0 {
			return nil
		}

		guarded := tx.Model(&domain.Image{}).
			Where("id = ? AND user_id = ? AND tag_count < ?", imageID, ownerID, limit).
			UpdateColumn("tag_count", gorm.Expr("tag_count + 1"))
		if guarded.Error != nil {
			return guarded.Error
		}
		if guarded.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&domain.Image{}).Where("id = ? AND user_id = ?", imageID, ownerID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return gorm.ErrRecordNotFound
			}
			return domain.ErrCapacityExceeded
		}

		changed = true
		return nil
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Warn("image vanished while attaching tag", "image_id", imageID)
		return false, nil
	case errors.Is(err, domain.ErrCapacityExceeded):
		s.logger.Info("tag attach rejected by cap", "image_id", imageID, "tag_id", tagID, "limit", limit)
		return false, err
	case err != nil:
		s.logger.Error("failed to attach tag", "image_id", imageID, "tag_id", tagID, "error", err)
		return false, fmt.Errorf("ошибка при добавлении тега к изображению: %w", err)
	}

	s.logger.Info("tag attach processed",
		"image_id", imageID,
		"tag_id", tagID,
		"changed", changed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return changed, nil
}

// DetachTag удаляет связь и уменьшает счетчик тегов
func (s *ImageStorage) DetachTag(ctx context.Context, imageID, ownerID, tagID uuid.UUID) (bool, error) {
	start := time.Now()
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unlink := tx.Where("image_id = ? AND tag_id = ?", imageID, tagID).Delete(&domain.ImageTag{})
		if unlink.Error != nil {
			return unlink.Error
		}
		if unlink.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&domain.Image{}).
			Where("id = ? AND user_id = ? AND tag_count > 0", imageID, ownerID).
			UpdateColumn("tag_count", gorm.Expr("tag_count - 1")).Error; err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		s.logger.Error("failed to detach tag", "image_id", imageID, "tag_id", tagID, "error", err)
		return false, fmt.Errorf("ошибка при удалении тега с изображения: %w", err)
	}

	s.logger.Info("tag detach processed",
		"image_id", imageID,
		"tag_id", tagID,
		"changed", changed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return changed, nil
}
