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
)

// CommentStorage реализует ports.CommentStorage с помощью GORM
type CommentStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCommentStorage(db *gorm.DB, logger *slog.Logger) *CommentStorage {
	return &CommentStorage{db: db, logger: logger}
}

func (s *CommentStorage) ListRootComments(ctx context.Context, imageID uuid.UUID) ([]domain.Comment, error) {
	return s.list(ctx, "image_id = ? AND parent_id IS NULL", "created_at DESC", imageID)
}

func (s *CommentStorage) ListReplyComments(ctx context.Context, imageID uuid.UUID) ([]domain.Comment, error) {
	return s.list(ctx, "image_id = ? AND parent_id IS NOT NULL", "created_at ASC", imageID)
}

func (s *CommentStorage) list(ctx context.Context, where, order string, imageID uuid.UUID) ([]domain.Comment, error) {
	start := time.Now()

	var comments []domain.Comment
	if err := s.db.WithContext(ctx).Where(where, imageID).Order(order).Find(&comments).Error; err != nil {
		s.logger.Error("failed to list comments", "image_id", imageID, "where", where, "error", err)
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	s.logger.Debug("comments listed",
		"image_id", imageID,
		"where", where,
		"count", len(comments),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return comments, nil
}

func (s *CommentStorage) GetCommentByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return s.first(ctx, "id = ?", id)
}

// GetAuthoredComment возвращает комментарий, только если его автор userID
func (s *CommentStorage) GetAuthoredComment(ctx context.Context, id, userID uuid.UUID) (*domain.Comment, error) {
	return s.first(ctx, "id = ? AND user_id = ?", id, userID)
}

func (s *CommentStorage) first(ctx context.Context, query string, args ...interface{}) (*domain.Comment, error) {
	var comment domain.Comment
	err := s.db.WithContext(ctx).Where(query, args...).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get comment", "args", args, "error", err)
		return nil, fmt.Errorf("ошибка при получении комментария: %w", err)
	}
	return &comment, nil
}

func (s *CommentStorage) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		s.logger.Error("failed to create comment", "image_id", comment.ImageID, "error", err)
		return fmt.Errorf("ошибка при сохранении комментария: %w", err)
	}
	s.logger.Info("comment created", "id", comment.ID, "image_id", comment.ImageID, "parent_id", comment.ParentID)
	return nil
}

func (s *CommentStorage) UpdateComment(ctx context.Context, comment *domain.Comment) error {
	err := s.db.WithContext(ctx).Model(comment).Select("text", "updated_at").Updates(comment).Error
	if err != nil {
		s.logger.Error("failed to update comment", "id", comment.ID, "error", err)
		return fmt.Errorf("ошибка при обновлении комментария: %w", err)
	}
	return nil
}

func (s *CommentStorage) DeleteComment(ctx context.Context, comment *domain.Comment) error {
	if err := s.db.WithContext(ctx).Delete(&domain.Comment{}, "id = ?", comment.ID).Error; err != nil {
		s.logger.Error("failed to delete comment", "id", comment.ID, "error", err)
		return fmt.Errorf("ошибка при удалении комментария: %w", err)
	}
	s.logger.Info("comment deleted", "id", comment.ID)
	return nil
}
