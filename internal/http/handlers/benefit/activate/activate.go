// Package activate реализует HTTP-обработчик активации инвестиционного пакета.
//
// Handler принимает JSON-запрос с типом пакета и суммой, валидирует их,
// вызывает бизнес-логику активации и возвращает обновлённый агрегат статуса.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
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

// Handler управляет HTTP-запросами на активацию пакета.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики активации пакета
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики активации пакета.
type Service interface {
	ActivatePackage(ctx context.Context, req models.DummyActivatePackage) (*models.UserStatus, error)
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
// @Summary Активировать инвестиционный пакет
// @Description Активирует пакет пользователя и запускает цикл начислений с первого дня.
// @Tags Packages
// @Accept  json
// @Produce  json
// @Param request body models.DummyActivatePackage true "Данные активации пакета"
// @Success 200 {object} response.Response "Обновлённый статус пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный пакет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при активации"
// @Security BearerAuth
// @Router /packages/activate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.benefit.activate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyActivatePackage
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

	st, err := h.service.ActivatePackage(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPackage) || errors.Is(err, models.ErrInvalidAmount) {
			log.Error("rejected package activation", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to activate package", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not activate package"))
		return
	}

	log.Info("package activated", sl.UID(req.UserUID), slog.String("package", req.PackageType))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": st,
	}))
}
