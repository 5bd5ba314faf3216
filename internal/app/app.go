package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/PhotoShare/internal/config"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
)

// MediaCleanupHandler обрабатывает одну задачу очереди удаления файлов
type MediaCleanupHandler func(context.Context, payloads.MediaCleanupPayload) error

type App struct {
	Config         *config.Config
	logger         *slog.Logger
	router         http.Handler
	cleanupHandler MediaCleanupHandler
	cleanupQueue   ports.MediaCleanupConsumer
	closers        []io.Closer
}

// NewApp собирает приложение. closers закрываются в обратном порядке при Shutdown.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	cleanupHandler MediaCleanupHandler,
	cleanupQueue ports.MediaCleanupConsumer,
	closers ...io.Closer,
) *App {
	return &App{
		Config:         cfg,
		logger:         logger,
		router:         router,
		cleanupHandler: cleanupHandler,
		cleanupQueue:   cleanupQueue,
		closers:        closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

func (a *App) Run(ctx context.Context, mode *string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting app", "mode", *mode)

	var err error
	switch *mode {
	case "server":
		err = runServer(ctx, a.Config, a.router, a.logger)
	case "worker":
		err = runWorker(ctx, a.cleanupQueue, a.cleanupHandler, a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", *mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	if err != nil {
		return err
	}

	a.logger.Info("app stopped")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ошибка закрытия ресурсов: %w", errors.Join(errs...))
	}
	return nil
}
