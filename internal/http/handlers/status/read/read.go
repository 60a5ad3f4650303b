// Package read реализует HTTP-обработчик получения снапшота статуса пользователя.
//
// Handler извлекает идентификатор пользователя из URL, валидирует его как UUID
// и возвращает снапшот агрегата; чтение идёт через кеш и может отставать
// от последней записи.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/benefit-engine/internal/http/response"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// Handler обрабатывает запросы на получение снапшота статуса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения снапшота статуса.
type Service interface {
	Snapshot(ctx context.Context, userUID string) (*models.UserStatus, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить снапшот статуса пользователя
// @Description Возвращает агрегат статуса; при первом обращении запись создаётся лениво.
// @Tags Status
// @Produce  json
// @Param userID path string true "UUID пользователя"
// @Success 200 {object} response.Response "Снапшот статуса"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении"
// @Security BearerAuth
// @Router /status/{userID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.status.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userID")
	if _, err := uuid.Parse(userUID); err != nil {
		log.Error("failed to decode user id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode user id from url"))
		return
	}

	st, err := h.service.Snapshot(r.Context(), userUID)
	if err != nil {
		log.Error("failed to read user status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read user status"))
		return
	}

	log.Info("user status read", sl.UID(userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": st,
	}))
}
