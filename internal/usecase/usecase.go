package usecase

import (
	"context"
	"io"
	"strings"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
)

// Соглашение для всех сценариев: отсутствие сущности, чужая сущность, повторная
// или собственная оценка возвращаются как (nil, nil). Ошибкой поднимаются
// domain.ErrForbidden, domain.ErrCapacityExceeded, domain.ErrValidation и сбои хранилищ.

// CommentPayload — тело запроса на создание или изменение комментария
type CommentPayload struct {
	Text string `json:"text" validate:"required,max=2048"`
}

// RatePayload — тело запроса на создание оценки
type RatePayload struct {
	Rate int `json:"rate" validate:"gte=1,lte=5"`
}

// TagPayload — название тега
type TagPayload struct {
	Title string `json:"title" validate:"required,max=50,excludesall=0x2C"`
}

// ImagePayload — метаданные загружаемого изображения
type ImagePayload struct {
	Description string   `json:"description" validate:"max=2048"`
	Tags        []string `json:"tags" validate:"dive,required,max=50,excludesall=0x2C"`
}

// DescriptionPayload — новое описание изображения
type DescriptionPayload struct {
	Description string `json:"description" validate:"max=2048"`
}

// URLPayload — новый URL изображения
type URLPayload struct {
	URL string `json:"url" validate:"required,url"`
}

// NormalizeTagTitle приводит название тега к каноническому виду
func NormalizeTagTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// CommentUseCase — комментарии к изображениям и сборка веток
type CommentUseCase interface {
	ListThread(ctx context.Context, imageID uuid.UUID, p domain.Principal) ([]domain.Comment, error)
	CreateForImage(ctx context.Context, imageID uuid.UUID, payload CommentPayload, p domain.Principal) (*domain.Comment, error)
	// Reply отвечает на корневой комментарий; ответ на ответ не создается
	Reply(ctx context.Context, parentID uuid.UUID, payload CommentPayload, p domain.Principal) (*domain.Comment, error)
	// Update меняет текст только собственного комментария
	Update(ctx context.Context, commentID uuid.UUID, payload CommentPayload, p domain.Principal) (*domain.Comment, error)
	Delete(ctx context.Context, commentID uuid.UUID, p domain.Principal) (*domain.Comment, error)
}

// RateUseCase — оценки изображений и их агрегаты
type RateUseCase interface {
	ListForImage(ctx context.Context, imageID uuid.UUID, offset, limit int, p domain.Principal) ([]domain.Rate, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int, p domain.Principal) ([]domain.Rate, error)
	// Create не создает оценку своего изображения и повторную оценку
	Create(ctx context.Context, imageID uuid.UUID, payload RatePayload, p domain.Principal) (*domain.Rate, error)
	AverageForImage(ctx context.Context, imageID uuid.UUID, p domain.Principal) (*float64, error)
	AverageForAllImages(ctx context.Context, p domain.Principal) ([]domain.ImageRating, error)
	Delete(ctx context.Context, rateID uuid.UUID, p domain.Principal) (*domain.Rate, error)
}

// TagUseCase — каталог тегов
type TagUseCase interface {
	ResolveOrCreate(ctx context.Context, title string, p domain.Principal) (*domain.Tag, error)
	List(ctx context.Context, offset, limit int, titleFilter string) ([]domain.Tag, error)
	Get(ctx context.Context, title string) (*domain.Tag, error)
	Delete(ctx context.Context, title string, p domain.Principal) (*domain.Tag, error)
}

// ImageUseCase — изображения и их теги. ownerID — ожидаемый владелец изображения;
// операции над чужим изображением доступны только администратору.
type ImageUseCase interface {
	Create(ctx context.Context, file io.Reader, fileName, contentType string, payload ImagePayload, p domain.Principal) (*domain.Image, error)
	Get(ctx context.Context, imageID uuid.UUID, p domain.Principal) (*domain.Image, error)
	ListByUser(ctx context.Context, userID uuid.UUID, p domain.Principal) ([]domain.Image, error)
	Transform(ctx context.Context, imageID, ownerID uuid.UUID, profiles []string, p domain.Principal) (*domain.Image, error)
	SetURL(ctx context.Context, imageID, ownerID uuid.UUID, payload URLPayload, p domain.Principal) (*domain.Image, error)
	PatchDescription(ctx context.Context, imageID, ownerID uuid.UUID, payload DescriptionPayload, p domain.Principal) (*domain.Image, error)
	Delete(ctx context.Context, imageID, ownerID uuid.UUID, p domain.Principal) (*domain.Image, error)
	AttachTag(ctx context.Context, imageID, ownerID uuid.UUID, title string, p domain.Principal) (*domain.Image, error)
	DetachTag(ctx context.Context, imageID, ownerID uuid.UUID, title string, p domain.Principal) (*domain.Image, error)
}
