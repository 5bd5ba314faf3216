package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserIDHeader — заголовок, в котором шлюз аутентификации передает ID пользователя
const UserIDHeader = "X-User-ID"

type principalKey struct{}

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.RecordHTTPRequest(r.Method, route, ww.statusCode)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Authenticate загружает пользователя по X-User-ID и кладет субъект запроса в контекст.
// Выдача и проверка учетных данных выполняются до этого сервиса.
func Authenticate(users ports.UserStorage, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(UserIDHeader))
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Not authenticated", logger)
				return
			}

			user, err := users.GetUserByID(r.Context(), id)
			if err != nil {
				logger.Error("failed to load principal", "user_id", id, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Internal server error", logger)
				return
			}
			if user == nil || !user.Role.Valid() {
				respondWithError(w, http.StatusUnauthorized, "Not authenticated", logger)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, user.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom возвращает субъект запроса, установленный Authenticate
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

func mustPrincipal(r *http.Request) domain.Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}
