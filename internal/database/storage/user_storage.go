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

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// GetUserByID получает пользователя по ID, используется для определения субъекта запроса
func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()

	var user domain.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("user not found", "user_id", id)
			return nil, nil
		}
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, fmt.Errorf("select user: %w", err)
	}

	s.logger.Debug("user found",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &user, nil
}
