package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/validation"
	"github.com/google/uuid"
)

// Ограничения пагинации списков оценок
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

// rateUseCase реализует RateUseCase
type rateUseCase struct {
	rates  ports.RateStorage
	images ports.ImageStorage
	gate   *access.Gate
	logger *slog.Logger
}

func NewRateUseCase(
	rates ports.RateStorage,
	images ports.ImageStorage,
	gate *access.Gate,
	logger *slog.Logger,
) RateUseCase {
	return &rateUseCase{
		rates:  rates,
		images: images,
		gate:   gate,
		logger: logger,
	}
}

func (uc *rateUseCase) ListForImage(ctx context.Context, imageID uuid.UUID, offset, limit int, p domain.Principal) ([]domain.Rate, error) {
	if err := uc.gate.Require(access.OpRateRead, p); err != nil {
		return nil, err
	}
	offset, limit = clampPage(offset, limit)

	rates, err := uc.rates.ListRatesByImage(ctx, imageID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении оценок изображения %s: %w", imageID, err)
	}
	return rates, nil
}

func (uc *rateUseCase) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int, p domain.Principal) ([]domain.Rate, error) {
	if err := uc.gate.Require(access.OpRateRead, p); err != nil {
		return nil, err
	}
	offset, limit = clampPage(offset, limit)

	rates, err := uc.rates.ListRatesByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении оценок пользователя %s: %w", userID, err)
	}
	return rates, nil
}

// Create возвращает (nil, nil), если изображения нет, оно принадлежит субъекту
// или субъект уже оценил его. Эти случаи намеренно неразличимы.
func (uc *rateUseCase) Create(ctx context.Context, imageID uuid.UUID, payload RatePayload, p domain.Principal) (*domain.Rate, error) {
	if err := uc.gate.Require(access.OpRateCreate, p); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}

	image, err := uc.images.GetImageByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображения %s: %w", imageID, err)
	}
	if image == nil {
		return nil, nil
	}
	if image.UserID == p.ID {
		uc.logger.Info("self rating rejected", "image_id", imageID, "user_id", p.ID)
		return nil, nil
	}

	existing, err := uc.rates.GetRateByImageAndUser(ctx, imageID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке оценки: %w", err)
	}
	if existing != nil {
		uc.logger.Info("duplicate rating rejected", "image_id", imageID, "user_id", p.ID)
		return nil, nil
	}

	rate := &domain.Rate{ImageID: imageID, UserID: p.ID, Rate: payload.Rate}
	created, err := uc.rates.CreateRate(ctx, rate)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при создании оценки: %w", err)
	}
	if !created {
		// конкурентный дубликат отсечен уникальным индексом
		return nil, nil
	}
	return rate, nil
}

// AverageForImage возвращает nil, если у изображения нет оценок
func (uc *rateUseCase) AverageForImage(ctx context.Context, imageID uuid.UUID, p domain.Principal) (*float64, error) {
	if err := uc.gate.Require(access.OpRateRead, p); err != nil {
		return nil, err
	}

	avg, err := uc.rates.AverageForImage(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при расчете средней оценки %s: %w", imageID, err)
	}
	return avg, nil
}

// AverageForAllImages возвращает все изображения по убыванию средней оценки.
// У изображений без оценок AvgRate == nil, они идут последними.
func (uc *rateUseCase) AverageForAllImages(ctx context.Context, p domain.Principal) ([]domain.ImageRating, error) {
	if err := uc.gate.Require(access.OpRateRead, p); err != nil {
		return nil, err
	}

	ratings, err := uc.rates.AverageForAllImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при расчете средних оценок: %w", err)
	}
	return ratings, nil
}

// Delete удаляет оценку. Модерация удаляет любую оценку, остальные роли — только свою.
func (uc *rateUseCase) Delete(ctx context.Context, rateID uuid.UUID, p domain.Principal) (*domain.Rate, error) {
	if err := uc.gate.Require(access.OpRateDeleteOwn, p); err != nil {
		return nil, err
	}

	var (
		rate *domain.Rate
		err  error
	)
	if uc.gate.Allows(access.OpRateDelete, p) {
		rate, err = uc.rates.GetRateByID(ctx, rateID)
	} else {
		rate, err = uc.rates.GetRateByIDAndUser(ctx, rateID, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении оценки %s: %w", rateID, err)
	}
	if rate == nil {
		return nil, nil
	}

	if err := uc.rates.DeleteRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при удалении оценки %s: %w", rateID, err)
	}
	return rate, nil
}
