package ports

import (
	"context"
	"io"
)

// MediaObject — результат загрузки файла на медиа-хостинг
type MediaObject struct {
	URL      string
	PublicID string
}

// MediaHost определяет интерфейс медиа-хостинга (S3, MinIO)
type MediaHost interface {
	// Upload загружает файл под именем <app>/<ownerName>/<fileName>
	Upload(ctx context.Context, file io.Reader, ownerName, fileName, contentType string) (MediaObject, error)
	DeleteByPublicID(ctx context.Context, publicID string) error
	// Transform возвращает URL изображения с примененным именованным профилем
	Transform(url, profile string) (string, error)
}
