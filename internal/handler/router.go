package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers — набор обработчиков, из которых собирается роутер
type Handlers struct {
	Images   *ImageHandler
	Comments *CommentHandler
	Rates    *RateHandler
	Tags     *TagHandler
}

// NewRouter собирает chi-роутер. Все маршруты, кроме /metrics и /healthz,
// требуют аутентифицированного субъекта.
func NewRouter(h Handlers, users ports.UserStorage, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(users, logger))

		r.Route("/images", func(r chi.Router) {
			r.Get("/", h.Images.ListMine)
			r.Post("/", h.Images.Create)
			r.Route("/{imageID}", func(r chi.Router) {
				r.Get("/", h.Images.Get)
				ownedImageRoutes(r, h.Images)

				r.Get("/comments", h.Comments.ListThread)
				r.Post("/comments", h.Comments.Create)

				r.Get("/rates", h.Rates.ListForImage)
				r.Post("/rates", h.Rates.Create)
				r.Get("/rates/avg", h.Rates.AverageForImage)
			})
		})

		// изображения другого пользователя; сценарии требуют роль администратора
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/images", h.Images.ListByUser)
			r.Get("/rates", h.Rates.ListByUser)
			r.Route("/images/{imageID}", func(r chi.Router) {
				ownedImageRoutes(r, h.Images)
			})
		})

		r.Route("/comments/{commentID}", func(r chi.Router) {
			r.Put("/", h.Comments.Update)
			r.Delete("/", h.Comments.Delete)
			r.Post("/replies", h.Comments.Reply)
		})

		r.Get("/rates/avg", h.Rates.AverageForAllImages)
		r.Delete("/rates/{rateID}", h.Rates.Delete)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.Tags.List)
			r.Post("/", h.Tags.Create)
			r.Get("/{title}", h.Tags.Get)
			r.Delete("/{title}", h.Tags.Delete)
		})
	})

	return r
}

func ownedImageRoutes(r chi.Router, images *ImageHandler) {
	r.Put("/", images.Update)
	r.Patch("/", images.PatchDescription)
	r.Delete("/", images.Delete)
	r.Put("/tags/{title}", images.AttachTag)
	r.Delete("/tags/{title}", images.DetachTag)
}
