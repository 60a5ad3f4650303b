// Package credit реализует HTTP-обработчик подтверждённого зачисления средств
// от внешнего коллаборатора: депозита или реферальной комиссии.
package credit

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

// Handler управляет HTTP-запросами на зачисление средств.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики зачислений.
type Service interface {
	CreditConfirmed(ctx context.Context, req models.DummyCredit) (*models.UserStatus, error)
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
// @Summary Зачислить подтверждённые средства
// @Description Применяет подтверждённое зачисление (депозит или комиссию) к балансу.
// @Tags Status
// @Accept  json
// @Produce  json
// @Param request body models.DummyCredit true "Сумма и источник зачисления"
// @Success 200 {object} response.Response "Обновлённый статус пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или некорректная сумма"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при зачислении"
// @Security BearerAuth
// @Router /credits [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.status.credit"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCredit
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

	st, err := h.service.CreditConfirmed(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidAmount) {
			log.Error("rejected credit", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to apply credit", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not apply credit"))
		return
	}

	log.Info("credit applied", sl.UID(req.UserUID),
		slog.Float64("amount", req.Amount), slog.String("source", req.Source))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": st,
	}))
}
