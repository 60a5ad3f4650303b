// Package complete реализует HTTP-обработчик завершения периода ожидания пионера.
//
// Handler валидирует запрос и включает привилегии уровня, если 48 часов истекли.
package complete

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/benefit-engine/internal/http/response"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// Handler управляет HTTP-запросами на завершение периода ожидания.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс машины состояний пионера.
type Service interface {
	CompleteWaitingPeriod(ctx context.Context, userUID string) (*models.UserStatus, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Завершить период ожидания пионера
// @Description Включает привилегии уровня, если 48-часовой период ожидания истёк.
// @Tags Pioneer
// @Accept  json
// @Produce  json
// @Param request body models.DummyCompletePioneer true "Пользователь"
// @Success 200 {object} response.Response "Обновлённый статус пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Период не начат или ещё не истёк"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при завершении"
// @Security BearerAuth
// @Router /pioneer/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pioneer.complete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCompletePioneer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	st, err := h.service.CompleteWaitingPeriod(r.Context(), req.UserUID)
	if err != nil {
		if errors.Is(err, models.ErrNotInWaitingPeriod) || errors.Is(err, models.ErrWaitingPeriodNotElapsed) {
			log.Error("rejected waiting period completion", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to complete waiting period", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not complete waiting period"))
		return
	}

	log.Info("pioneer waiting period completed", sl.UID(req.UserUID), slog.String("level", st.Pioneer.Level))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": st,
	}))
}
