package ports

import (
	"context"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
)

// Соглашение для всех хранилищ: отсутствие записи возвращается как (nil, nil),
// ошибка — только при сбое бд.

// ImageStorage определяет методы для взаимодействия с хранилищем изображений
type ImageStorage interface {
	CreateImage(ctx context.Context, image *domain.Image) error
	// GetImageByID возвращает изображение вместе с тегами
	GetImageByID(ctx context.Context, id uuid.UUID) (*domain.Image, error)
	// GetOwnedImage возвращает изображение только если его владелец ownerID
	GetOwnedImage(ctx context.Context, id, ownerID uuid.UUID) (*domain.Image, error)
	ListImagesByUser(ctx context.Context, userID uuid.UUID) ([]domain.Image, error)
	UpdateImage(ctx context.Context, image *domain.Image) error
	DeleteImage(ctx context.Context, image *domain.Image) error

	// AttachTag прикрепляет тег одним охранным обновлением счетчика тегов.
	// changed == false, если тег уже прикреплен или изображение не найдено;
	// domain.ErrCapacityExceeded, если набор тегов заполнен.
	AttachTag(ctx context.Context, imageID, ownerID, tagID uuid.UUID, limit int) (changed bool, err error)
	// DetachTag открепляет тег; changed == false, если тег не был прикреплен.
	DetachTag(ctx context.Context, imageID, ownerID, tagID uuid.UUID) (changed bool, err error)
}

// TagStorage определяет методы для работы с каталогом тегов
type TagStorage interface {
	GetTagByTitle(ctx context.Context, title string) (*domain.Tag, error)
	// CreateTagIfAbsent создает тег или возвращает уже существующий с тем же названием
	CreateTagIfAbsent(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	ListTags(ctx context.Context, offset, limit int, titleFilter string) ([]domain.Tag, error)
	DeleteTag(ctx context.Context, title string) (*domain.Tag, error)
}

// CommentStorage определяет методы для работы с комментариями
type CommentStorage interface {
	// ListRootComments возвращает комментарии без родителя, новые первыми
	ListRootComments(ctx context.Context, imageID uuid.UUID) ([]domain.Comment, error)
	// ListReplyComments возвращает ответы, старые первыми
	ListReplyComments(ctx context.Context, imageID uuid.UUID) ([]domain.Comment, error)
	GetCommentByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	GetAuthoredComment(ctx context.Context, id, userID uuid.UUID) (*domain.Comment, error)
	CreateComment(ctx context.Context, comment *domain.Comment) error
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, comment *domain.Comment) error
}

// RateStorage определяет методы для работы с оценками
type RateStorage interface {
	ListRatesByImage(ctx context.Context, imageID uuid.UUID, offset, limit int) ([]domain.Rate, error)
	ListRatesByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Rate, error)
	GetRateByImageAndUser(ctx context.Context, imageID, userID uuid.UUID) (*domain.Rate, error)
	GetRateByID(ctx context.Context, id uuid.UUID) (*domain.Rate, error)
	// GetRateByIDAndUser возвращает оценку, только если ее поставил userID
	GetRateByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Rate, error)
	// CreateRate возвращает false, если оценка этой пары (image, user) уже существует
	CreateRate(ctx context.Context, rate *domain.Rate) (bool, error)
	DeleteRate(ctx context.Context, rate *domain.Rate) error
	// AverageForImage возвращает nil, если оценок нет
	AverageForImage(ctx context.Context, imageID uuid.UUID) (*float64, error)
	// AverageForAllImages возвращает все изображения, по убыванию средней, без оценок — последними
	AverageForAllImages(ctx context.Context) ([]domain.ImageRating, error)
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
