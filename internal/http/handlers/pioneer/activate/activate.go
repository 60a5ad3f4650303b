// Package activate реализует HTTP-обработчик активации уровня пионера.
//
// Handler валидирует запрос и запускает 48-часовой период ожидания;
// привилегии уровня включаются отдельным запросом завершения периода.
package activate

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

// Handler управляет HTTP-запросами на активацию уровня пионера.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс машины состояний пионера.
type Service interface {
	ActivatePioneer(ctx context.Context, req models.DummyActivatePioneer) (*models.UserStatus, error)
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
// @Summary Активировать уровень пионера
// @Description Запускает 48-часовой период ожидания перед включением привилегий уровня.
// @Tags Pioneer
// @Accept  json
// @Produce  json
// @Param request body models.DummyActivatePioneer true "Уровень и длительность"
// @Success 200 {object} response.Response "Обновлённый статус пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный уровень"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при активации"
// @Security BearerAuth
// @Router /pioneer/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pioneer.activate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyActivatePioneer
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

	st, err := h.service.ActivatePioneer(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPioneerLevel) {
			log.Error("rejected pioneer activation", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to activate pioneer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate pioneer"))
		return
	}

	log.Info("pioneer activation requested", sl.UID(req.UserUID), slog.String("level", req.Level))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": st,
	}))
}
