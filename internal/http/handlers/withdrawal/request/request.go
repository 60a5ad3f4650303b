// Package request реализует HTTP-обработчик запроса на вывод средств.
//
// Handler валидирует запрос, вызывает бизнес-логику резервирования вывода
// и возвращает приоритет очереди с оценкой времени обработки.
package request

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

// Handler управляет HTTP-запросами на вывод средств.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики вывода средств.
type Service interface {
	ProcessWithdrawalRequest(ctx context.Context, req models.DummyWithdrawal) (*models.WithdrawalResult, error)
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
// @Summary Запросить вывод средств
// @Description Резервирует сумму под вывод с проверкой баланса и дневного лимита.
// @Tags Withdrawals
// @Accept  json
// @Produce  json
// @Param request body models.DummyWithdrawal true "Данные запроса на вывод"
// @Success 200 {object} response.Response "Приоритет и оценка времени обработки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или недостаточный баланс"
// @Failure 429 {object} response.ErrorResponse "Превышен дневной лимит вывода"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обработке вывода"
// @Security BearerAuth
// @Router /withdrawals [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.withdrawal.request"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWithdrawal
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

	res, err := h.service.ProcessWithdrawalRequest(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDailyLimitExceeded):
			log.Error("daily withdrawal limit exceeded", sl.UID(req.UserUID))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, models.ErrInsufficientBalance), errors.Is(err, models.ErrInvalidAmount):
			log.Error("rejected withdrawal request", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to process withdrawal", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not process withdrawal"))
		}
		return
	}

	log.Info("withdrawal request accepted", sl.UID(req.UserUID),
		slog.Float64("amount", req.Amount), slog.String("priority", res.Priority))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"result": res,
	}))
}
