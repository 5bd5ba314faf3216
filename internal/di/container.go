package di

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/adapter/storage/minio"
	"github.com/GoArmGo/PhotoShare/internal/app"
	"github.com/GoArmGo/PhotoShare/internal/cache"
	"github.com/GoArmGo/PhotoShare/internal/config"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/database/client"
	"github.com/GoArmGo/PhotoShare/internal/database/storage"
	"github.com/GoArmGo/PhotoShare/internal/handler"
	"github.com/GoArmGo/PhotoShare/internal/logger"
	"github.com/GoArmGo/PhotoShare/internal/rabbitmq"
	"github.com/GoArmGo/PhotoShare/internal/usecase"
)

// ограничиваем число параллельных загрузок на медиа-хостинг
const uploadConcurrency = 5

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp() (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		AppName: cfg.AppName,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []io.Closer
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	// 2. Подключение к бд
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient)

	// 3. Инициализация хранилищ
	imageStorage := storage.NewImageStorage(dbClient.Gorm, slogger)
	tagStorage := storage.NewTagStorage(dbClient.Gorm, slogger)
	commentStorage := storage.NewCommentStorage(dbClient.Gorm, slogger)
	rateStorage := storage.NewRateStorage(dbClient.Gorm, slogger)
	userStorage := storage.NewUserStorage(dbClient.Gorm, slogger)

	// 4. Кэш снимков изображений
	snapshotStore, closer, err := buildSnapshotStore(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	imageCache := cache.NewImageCache(snapshotStore, cfg.CacheTTL(), slogger)

	// 5. Медиа-хостинг (S3 / MinIO)
	mediaHost, err := minio.NewMinioClient(cfg, slogger)
	if err != nil {
		return fail(err)
	}

	// 6. Очередь удаления файлов
	rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeFunc(func() error {
		rabbitMQClient.Close()
		return nil
	}))

	// 7. Бизнес-логика
	gate := access.NewGate(access.DefaultPolicy(), slogger)
	imageUseCase := usecase.NewImageUseCase(imageStorage, tagStorage, mediaHost, imageCache, rabbitMQClient, gate, slogger)
	tagUseCase := usecase.NewTagUseCase(tagStorage, gate, slogger)
	commentUseCase := usecase.NewCommentUseCase(commentStorage, imageStorage, gate, slogger)
	rateUseCase := usecase.NewRateUseCase(rateStorage, imageStorage, gate, slogger)

	// 8. HTTP
	router := handler.NewRouter(handler.Handlers{
		Images:   handler.NewImageHandler(imageUseCase, make(chan struct{}, uploadConcurrency), slogger),
		Comments: handler.NewCommentHandler(commentUseCase, slogger),
		Rates:    handler.NewRateHandler(rateUseCase, slogger),
		Tags:     handler.NewTagHandler(tagUseCase, slogger),
	}, userStorage, cfg.RequestTimeout, slogger)

	// 9. Сборка итогового приложения
	application := app.NewApp(
		cfg,
		slogger,
		router,
		usecase.NewMediaCleanupHandler(mediaHost, slogger),
		rabbitMQClient,
		closers...,
	)

	slogger.Info("all dependencies initialized")
	return application, nil
}

// buildSnapshotStore выбирает бэкенд кэша по CACHE_BACKEND.
// Возвращает Closer для бэкендов, которые держат файлы.
func buildSnapshotStore(cfg *config.Config, logger *slog.Logger) (ports.SnapshotCache, io.Closer, error) {
	switch cfg.CacheBackend {
	case "badger":
		store, err := cache.OpenBadgerStore(cfg.CacheBadgerDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка открытия кэша badger: %w", err)
		}
		return store, store, nil
	default:
		return cache.NewMemoryStore(cfg.CacheTTL(), time.Minute), nil, nil
	}
}
