package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/usecase"
	"github.com/go-chi/chi/v5"
)

// TagHandler — обработчик HTTP-запросов для каталога тегов.
type TagHandler struct {
	tagUseCase usecase.TagUseCase
	logger     *slog.Logger
}

func NewTagHandler(uc usecase.TagUseCase, logger *slog.Logger) *TagHandler {
	return &TagHandler{tagUseCase: uc, logger: logger}
}

// List — теги по названию с пагинацией и фильтром ?q=.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := pageParams(r)

	tags, err := h.tagUseCase.List(r.Context(), offset, limit, r.URL.Query().Get("q"))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tags, h.logger)
}

func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tagUseCase.Get(r.Context(), chi.URLParam(r, "title"))
	h.respondTag(w, http.StatusOK, tag, err)
}

// Create возвращает существующий тег с тем же названием, если он уже есть.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload usecase.TagPayload
	if !decodeJSON(w, r, &payload, h.logger) {
		return
	}

	tag, err := h.tagUseCase.ResolveOrCreate(r.Context(), payload.Title, mustPrincipal(r))
	h.respondTag(w, http.StatusOK, tag, err)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tagUseCase.Delete(r.Context(), chi.URLParam(r, "title"), mustPrincipal(r))
	h.respondTag(w, http.StatusOK, tag, err)
}

func (h *TagHandler) respondTag(w http.ResponseWriter, code int, tag *domain.Tag, err error) {
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if tag == nil {
		respondNotFound(w, "Tag", h.logger)
		return
	}
	respondWithJSON(w, code, tag, h.logger)
}
