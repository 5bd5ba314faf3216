package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagStorage реализует ports.TagStorage с помощью GORM
type TagStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTagStorage(db *gorm.DB, logger *slog.Logger) *TagStorage {
	return &TagStorage{db: db, logger: logger}
}

// GetTagByTitle ищет тег по уже нормализованному названию
func (s *TagStorage) GetTagByTitle(ctx context.Context, title string) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.WithContext(ctx).Where("title = ?", title).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get tag", "title", title, "error", err)
		return nil, fmt.Errorf("ошибка при получении тега: %w", err)
	}
	return &tag, nil
}

// CreateTagIfAbsent вставляет тег; при конфликте по названию возвращает существующий
func (s *TagStorage) CreateTagIfAbsent(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	start := time.Now()

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
		Create(tag)
	if res.Error != nil {
		s.logger.Error("failed to create tag", "title", tag.Title, "error", res.Error)
		return nil, fmt.Errorf("ошибка при создании тега: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Debug("tag already exists", "title", tag.Title)
		return s.GetTagByTitle(ctx, tag.Title)
	}

	s.logger.Info("tag created",
		"id", tag.ID,
		"title", tag.Title,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tag, nil
}

// ListTags возвращает теги по названию с пагинацией и поиском по подстроке
func (s *TagStorage) ListTags(ctx context.Context, offset, limit int, titleFilter string) ([]domain.Tag, error) {
	q := s.db.WithContext(ctx).Model(&domain.Tag{})
	if titleFilter != "" {
		q = q.Where("title LIKE ?", "%"+titleFilter+"%")
	}

	var tags []domain.Tag
	if err := q.Order("title").Offset(offset).Limit(limit).Find(&tags).Error; err != nil {
		s.logger.Error("failed to list tags", "filter", titleFilter, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка тегов: %w", err)
	}
	return tags, nil
}

// DeleteTag удаляет тег, его связи с изображениями и уменьшает их счетчики тегов
func (s *TagStorage) DeleteTag(ctx context.Context, title string) (*domain.Tag, error) {
	start := time.Now()

	tag, err := s.GetTagByTitle(ctx, title)
	if err != nil || tag == nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linked := tx.Model(&domain.ImageTag{}).Select("image_id").Where("tag_id = ?", tag.ID)
		if err := tx.Model(&domain.Image{}).
			Where("id IN (?) AND tag_count > 0", linked).
			UpdateColumn("tag_count", gorm.Expr("tag_count - 1")).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&domain.ImageTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Tag{}, "id = ?", tag.ID).Error
	})
	if err != nil {
		s.logger.Error("failed to delete tag", "title", title, "error", err)
		return nil, fmt.Errorf("ошибка при удалении тега: %w", err)
	}

	s.logger.Info("tag deleted", "title", title, "duration_ms", time.Since(start).Milliseconds())
	return tag, nil
}
