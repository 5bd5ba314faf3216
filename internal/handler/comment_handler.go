package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/usecase"
)

// CommentHandler — обработчик HTTP-запросов для комментариев.
type CommentHandler struct {
	commentUseCase usecase.CommentUseCase
	logger         *slog.Logger
}

func NewCommentHandler(uc usecase.CommentUseCase, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{commentUseCase: uc, logger: logger}
}

// ListThread — ветка комментариев изображения в порядке отображения.
func (h *CommentHandler) ListThread(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}

	thread, err := h.commentUseCase.ListThread(r.Context(), imageID, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, thread, h.logger)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	var payload usecase.CommentPayload
	if !decodeJSON(w, r, &payload, h.logger) {
		return
	}

	comment, err := h.commentUseCase.CreateForImage(r.Context(), imageID, payload, mustPrincipal(r))
	h.respondComment(w, http.StatusCreated, comment, err)
}

func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	parentID, ok := uuidParam(w, r, "commentID", h.logger)
	if !ok {
		return
	}
	var payload usecase.CommentPayload
	if !decodeJSON(w, r, &payload, h.logger) {
		return
	}

	comment, err := h.commentUseCase.Reply(r.Context(), parentID, payload, mustPrincipal(r))
	h.respondComment(w, http.StatusCreated, comment, err)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	commentID, ok := uuidParam(w, r, "commentID", h.logger)
	if !ok {
		return
	}
	var payload usecase.CommentPayload
	if !decodeJSON(w, r, &payload, h.logger) {
		return
	}

	comment, err := h.commentUseCase.Update(r.Context(), commentID, payload, mustPrincipal(r))
	h.respondComment(w, http.StatusOK, comment, err)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, ok := uuidParam(w, r, "commentID", h.logger)
	if !ok {
		return
	}

	comment, err := h.commentUseCase.Delete(r.Context(), commentID, mustPrincipal(r))
	h.respondComment(w, http.StatusOK, comment, err)
}

func (h *CommentHandler) respondComment(w http.ResponseWriter, code int, comment *domain.Comment, err error) {
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if comment == nil {
		respondNotFound(w, "Comment", h.logger)
		return
	}
	respondWithJSON(w, code, comment, h.logger)
}
