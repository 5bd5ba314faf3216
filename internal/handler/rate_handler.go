package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/usecase"
)

// RateHandler — обработчик HTTP-запросов для оценок изображений.
type RateHandler struct {
	rateUseCase usecase.RateUseCase
	logger      *slog.Logger
}

func NewRateHandler(uc usecase.RateUseCase, logger *slog.Logger) *RateHandler {
	return &RateHandler{rateUseCase: uc, logger: logger}
}

func (h *RateHandler) ListForImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	offset, limit := pageParams(r)

	rates, err := h.rateUseCase.ListForImage(r.Context(), imageID, offset, limit, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, rates, h.logger)
}

func (h *RateHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "userID", h.logger)
	if !ok {
		return
	}
	offset, limit := pageParams(r)

	rates, err := h.rateUseCase.ListByUser(r.Context(), userID, offset, limit, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, rates, h.logger)
}

// AverageForImage — средняя оценка изображения; 404, если оценок нет.
func (h *RateHandler) AverageForImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}

	avg, err := h.rateUseCase.AverageForImage(r.Context(), imageID, mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if avg == nil {
		respondNotFound(w, "Rating", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, domain.ImageRating{ImageID: imageID, AvgRate: avg}, h.logger)
}

func (h *RateHandler) AverageForAllImages(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.rateUseCase.AverageForAllImages(r.Context(), mustPrincipal(r))
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, ratings, h.logger)
}

func (h *RateHandler) Create(w http.ResponseWriter, r *http.Request) {
	imageID, ok := uuidParam(w, r, "imageID", h.logger)
	if !ok {
		return
	}
	var payload usecase.RatePayload
	if !decodeJSON(w, r, &payload, h.logger) {
		return
	}

	rate, err := h.rateUseCase.Create(r.Context(), imageID, payload, mustPrincipal(r))
	h.respondRate(w, http.StatusCreated, rate, err)
}

func (h *RateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rateID, ok := uuidParam(w, r, "rateID", h.logger)
	if !ok {
		return
	}

	rate, err := h.rateUseCase.Delete(r.Context(), rateID, mustPrincipal(r))
	h.respondRate(w, http.StatusOK, rate, err)
}

func (h *RateHandler) respondRate(w http.ResponseWriter, code int, rate *domain.Rate, err error) {
	if err != nil {
		respondWithUseCaseError(w, err, h.logger)
		return
	}
	if rate == nil {
		respondNotFound(w, "Rate", h.logger)
		return
	}
	respondWithJSON(w, code, rate, h.logger)
}
