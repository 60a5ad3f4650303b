// Package flag реализует HTTP-обработчик установки флага административного внимания.
//
// Handler валидирует запрос и выставляет флаг с причиной и приоритетом;
// новая причина перезаписывает старую.
package flag

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

// Handler управляет HTTP-запросами на установку флага внимания.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики флагов внимания.
type Service interface {
	FlagForAttention(ctx context.Context, userUID, reason, priority string) error
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
// @Summary Пометить пользователя для ручной проверки
// @Description Выставляет флаг внимания с причиной и приоритетом; новая причина перезаписывает старую.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyFlag true "Причина и приоритет"
// @Success 200 {object} response.Response "Флаг выставлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/flag [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.flag"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyFlag
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

	if err := h.service.FlagForAttention(r.Context(), req.UserUID, req.Reason, req.Priority); err != nil {
		log.Error("failed to flag user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not flag user"))
		return
	}

	log.Info("user flagged for attention", sl.UID(req.UserUID),
		slog.String("reason", req.Reason), slog.String("priority", req.Priority))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"flagged": true,
	}))
}
