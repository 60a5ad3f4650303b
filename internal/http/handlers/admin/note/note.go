// Package note реализует HTTP-обработчик добавления административной заметки.
//
// Handler валидирует запрос, извлекает имя оператора из контекста
// и дописывает заметку в журнал агрегата; флаг внимания не затрагивается.
package note

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/benefit-engine/internal/http/middlewarectx"
	"github.com/magabrotheeeer/benefit-engine/internal/http/response"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// Handler управляет HTTP-запросами на добавление заметки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики журнала заметок.
type Service interface {
	AddAdminNote(ctx context.Context, userUID, note, authorID, category string) error
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
// @Summary Добавить административную заметку
// @Description Дописывает заметку в журнал пользователя; автор берётся из JWT.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyAdminNote true "Текст и категория заметки"
// @Success 200 {object} response.Response "Заметка добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Оператор не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /admin/notes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.note"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAdminNote
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

	author, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || author == "" {
		log.Error("operator name not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.AddAdminNote(r.Context(), req.UserUID, req.Note, author, req.Category); err != nil {
		log.Error("failed to add admin note", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add admin note"))
		return
	}

	log.Info("admin note added", sl.UID(req.UserUID), slog.String("author", author))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"added": true,
	}))
}
