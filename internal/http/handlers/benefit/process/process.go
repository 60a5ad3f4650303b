// Package process реализует HTTP-обработчик обработки дневного начисления
// одного пользователя.
//
// Handler валидирует запрос, вызывает контроллер цикла начислений и возвращает
// результат: начислено ли, причина пропуска, новый день цикла и баланс.
package process

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/benefit-engine/internal/http/response"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// Handler управляет HTTP-запросами на обработку дневного начисления.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс контроллера цикла начислений.
type Service interface {
	ProcessDailyBenefits(ctx context.Context, userUID string) (*models.BenefitResult, error)
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
// @Summary Обработать дневное начисление пользователя
// @Description Начисляет дневную выгоду, если она к сроку; повторные вызовы до срока безопасны.
// @Tags Benefits
// @Accept  json
// @Produce  json
// @Param request body models.DummyProcessBenefits true "Пользователь для обработки"
// @Success 200 {object} response.Response "Результат обработки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обработке"
// @Security BearerAuth
// @Router /benefits/process [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.benefit.process"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyProcessBenefits
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

	res, err := h.service.ProcessDailyBenefits(r.Context(), req.UserUID)
	if err != nil {
		log.Error("failed to process daily benefits", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process daily benefits"))
		return
	}

	log.Info("daily benefits processed", sl.UID(req.UserUID),
		slog.Bool("processed", res.Processed), slog.String("reason", res.Reason))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"result": res,
	}))
}
