package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// максимальный размер JSON-тела запроса
const maxJSONBody = 1 << 20

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

func respondNotFound(w http.ResponseWriter, what string, logger *slog.Logger) {
	respondWithError(w, http.StatusNotFound, what+" not found", logger)
}

// respondWithUseCaseError переводит ошибку сценария в HTTP-статус
func respondWithUseCaseError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		}, logger)
	case errors.Is(err, domain.ErrValidation):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error(), logger)
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Operation forbidden", logger)
	case errors.Is(err, domain.ErrCapacityExceeded):
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Can't exceed the maximum number (%d) of tags per image", domain.MaxTagsPerImage), logger)
	default:
		logger.Error("request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error", logger)
	}
}

// decodeJSON читает тело запроса в dst; при ошибке отвечает 400 и возвращает false
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger *slog.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body", logger)
		return false
	}
	return true
}

// uuidParam разбирает UUID из параметра маршрута; при ошибке отвечает 400
func uuidParam(w http.ResponseWriter, r *http.Request, name string, logger *slog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("invalid path parameter", "param", name, "value", raw)
		respondWithError(w, http.StatusBadRequest, "Invalid "+name, logger)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams читает offset и limit из query-строки; некорректные значения игнорируются
func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return offset, limit
}
