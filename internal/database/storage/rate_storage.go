package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateStorage реализует ports.RateStorage с помощью GORM
type RateStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRateStorage(db *gorm.DB, logger *slog.Logger) *RateStorage {
	return &RateStorage{db: db, logger: logger}
}

// roundRate округляет среднюю оценку до двух знаков
func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *RateStorage) ListRatesByImage(ctx context.Context, imageID uuid.UUID, offset, limit int) ([]domain.Rate, error) {
	return s.list(ctx, "image_id = ?", imageID, offset, limit)
}

func (s *RateStorage) ListRatesByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Rate, error) {
	return s.list(ctx, "user_id = ?", userID, offset, limit)
}

func (s *RateStorage) list(ctx context.Context, where string, id uuid.UUID, offset, limit int) ([]domain.Rate, error) {
	var rates []domain.Rate
	err := s.db.WithContext(ctx).
		Where(where, id).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rates).Error
	if err != nil {
		s.logger.Error("failed to list rates", "where", where, "id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении оценок: %w", err)
	}
	return rates, nil
}

func (s *RateStorage) GetRateByImageAndUser(ctx context.Context, imageID, userID uuid.UUID) (*domain.Rate, error) {
	return s.first(ctx, "image_id = ? AND user_id = ?", imageID, userID)
}

func (s *RateStorage) GetRateByID(ctx context.Context, id uuid.UUID) (*domain.Rate, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *RateStorage) GetRateByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Rate, error) {
	return s.first(ctx, "id = ? AND user_id = ?", id, userID)
}

func (s *RateStorage) first(ctx context.Context, query string, args ...interface{}) (*domain.Rate, error) {
	var rate domain.Rate
	err := s.db.WithContext(ctx).Where(query, args...).First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get rate", "args", args, "error", err)
		return nil, fmt.Errorf("ошибка при получении оценки: %w", err)
	}
	return &rate, nil
}

// CreateRate вставляет оценку; уникальный индекс (image_id, user_id) отсекает дубликат
// от конкурентного запроса, тогда возвращается false.
func (s *RateStorage) CreateRate(ctx context.Context, rate *domain.Rate) (bool, error) {
	start := time.Now()

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "image_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(rate)
	if res.Error != nil {
		s.logger.Error("failed to create rate", "image_id", rate.ImageID, "user_id", rate.UserID, "error", res.Error)
		return false, fmt.Errorf("ошибка при сохранении оценки: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Warn("duplicate rate ignored", "image_id", rate.ImageID, "user_id", rate.UserID)
		return false, nil
	}

	s.logger.Info("rate created",
		"id", rate.ID,
		"image_id", rate.ImageID,
		"rate", rate.Rate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return true, nil
}

func (s *RateStorage) DeleteRate(ctx context.Context, rate *domain.Rate) error {
	if err := s.db.WithContext(ctx).Delete(&domain.Rate{}, "id = ?", rate.ID).Error; err != nil {
		s.logger.Error("failed to delete rate", "id", rate.ID, "error", err)
		return fmt.Errorf("ошибка при удалении оценки: %w", err)
	}
	s.logger.Info("rate deleted", "id", rate.ID)
	return nil
}

// AverageForImage возвращает среднюю оценку изображения или nil, если оценок нет
func (s *RateStorage) AverageForImage(ctx context.Context, imageID uuid.UUID) (*float64, error) {
	var avg sql.NullFloat64
	err := s.db.WithContext(ctx).
		Model(&domain.Rate{}).
		Select("AVG(rate)").
		Where("image_id = ?", imageID).
		Scan(&avg).Error
	if err != nil {
		s.logger.Error("failed to average rates", "image_id", imageID, "error", err)
		return nil, fmt.Errorf("ошибка при расчете средней оценки: %w", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	v := roundRate(avg.Float64)
	return &v, nil
}

type imageAverageRow struct {
	ImageID uuid.UUID
	AvgRate sql.NullFloat64
}

// AverageForAllImages возвращает средние оценки всех изображений.
// Изображения без оценок получают nil и идут последними.
func (s *RateStorage) AverageForAllImages(ctx context.Context) ([]domain.ImageRating, error) {
	start := time.Now()

	var rows []imageAverageRow
	err := s.db.WithContext(ctx).
		Table("images").
		Select("images.id AS image_id, AVG(rates.rate) AS avg_rate").
		Joins("LEFT JOIN rates ON rates.image_id = images.id").
		Group("images.id").
		Order("AVG(rates.rate) DESC NULLS LAST, images.id").
		Scan(&rows).Error
	if err != nil {
		s.logger.Error("failed to average rates for all images", "error", err)
		return nil, fmt.Errorf("ошибка при расчете средних оценок: %w", err)
	}

	ratings := make([]domain.ImageRating, 0, len(rows))
	for _, row := range rows {
		rating := domain.ImageRating{ImageID: row.ImageID}
		if row.AvgRate.Valid {
			v := roundRate(row.AvgRate.Float64)
			rating.AvgRate = &v
		}
		ratings = append(ratings, rating)
	}

	s.logger.Info("averaged rates for all images",
		"count", len(ratings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ratings, nil
}
