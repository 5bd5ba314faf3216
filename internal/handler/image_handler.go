package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadSize = 32 << 20

// ImageHandler — обработчик HTTP-запросов для работы с изображениями.
type ImageHandler struct {
	imageUseCase  usecase.ImageUseCase
	uploadLimiter chan struct{}
	logger        *slog.Logger
}

// NewImageHandler создаёт новый экземпляр ImageHandler.
// uploadLimiter ограничивает число одновременных загрузок на медиа-хостинг.
func NewImageHandler(uc usecase.ImageUseCase, limiter chan struct{}, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{imageUseCase: uc, uploadLimiter: limiter, logger: logger}
}

// imageUpdateRequest — тело PUT: либо новые профили преобразования, либо новый URL
type imageUpdateRequest struct {
	URL             string   `json:"url"`
	Transformations []string `json:"transformations"`
}

// owner определяет ожидаемого владельца: параметр userID для маршрутов администратора,
// иначе сам субъект запроса
func (h *ImageHandler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if chi.URLParam(r, "userID") == "" {
		return mustPrincipal(r).ID, true
	}
	return uuidParam(w, r, "userID", h.logger)
}

// splitTags принимает теги как повторяющиеся поля формы и как список через запятую
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

// Create — загружает изображение из multipart-формы (file, description, tags).
func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	select {
	case h.uploadLimiter <- struct{}{}:
		defer func() { <-h.uploadLimiter }()
	case <-r.Context().Done():
		respondWithError(w, http.StatusServiceUnavailable, "Upload capacity exhausted", h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.logger.Warn("invalid multipart form", "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form", h.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file", h.logger)
		return
	}
	defer file.Close()

	payload := usecase.ImagePayload{
		Description: r.FormValue("description"),
		Tags:        splitTags(r.MultipartForm.Value["tags"]),
	}

	image, err := h.imageUseCase.Create(r.Context(), file, header.Filename, header.Header.Get("Content-Type"), payload, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}

	h.logger.Info("image uploaded", "image_id", image.ID, "tags", len(image.Tags))
	respondWithJSON(w, http.StatusCreated, image, h.logger)
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}

	image, err := h.imageUseCase.Get(r.Context(), imageID, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if image == nil {
		respondNotFound(w, "Image", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, image, h.logger)
}

func (h *ImageHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID", h.logger)
	if !ok {
		return
	}

	images, err := h.imageUseCase.ListByUser(r.Context(), userID, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, images, h.logger)
}

// ListMine — изображения текущего пользователя.
func (h *ImageHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p := mustPrincipal(r)
	images, err := h.imageUseCase.ListByUser(r.Context(), p.ID, p)
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, images, h.logger)
}

// Update — применяет профили преобразования или заменяет URL.
func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req imageUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	p := mustPrincipal(r)
	var (
		image *domain.Image
		err   error
	)
	if len(req.Transformations) > 0 {
		image, err = h.imageUseCase.Transform(r.Context(), imageID, ownerID, req.Transformations, p)
	} else {
		image, err = h.imageUseCase.SetURL(r.Context(), imageID, ownerID, usecase.URLPayload{URL: req.URL}, p)
	}
	h.respondImage(w, image, err)
}

func (h *ImageHandler) PatchDescription(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var payload usecase.DescriptionPayload
	if !decodeJSON(w, r, &payload, h.logger) {
		return
	}

	image, err := h.imageUseCase.PatchDescription(r.Context(), imageID, ownerID, payload, mustPrincipal(r))
	h.respondImage(w, image, err)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	image, err := h.imageUseCase.Delete(r.Context(), imageID, ownerID, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if image == nil {
		respondNotFound(w, "Image", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	image, err := h.imageUseCase.AttachTag(r.Context(), imageID, ownerID, chi.URLParam(r, "title"), mustPrincipal(r))
	h.respondImage(w, image, err)
}

func (h *ImageHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}

	image, err := h.imageUseCase.DetachTag(r.Context(), imageID, ownerID, chi.URLParam(r, "title"), mustPrincipal(r))
	h.respondImage(w, image, err)
}

// respondImage отвечает изображением, 404 при отсутствии или ошибкой сценария
func (h *ImageHandler) respondImage(w http.ResponseWriter, image *domain.Image, err error) {
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if image == nil {
		respondNotFound(w, "Image", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, image, h.logger)
}
