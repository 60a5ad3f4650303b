// Package list реализует HTTP-обработчик чтения истории леджера пользователя
// с пагинацией через query-параметры limit и offset.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/benefit-engine/internal/http/response"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

const defaultLimit = 50

// Handler обрабатывает запросы на чтение истории леджера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения записей леджера.
type Service interface {
	ListLedgerTransactions(ctx context.Context, userUID string, limit, offset int) ([]*models.LedgerTransaction, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить историю леджера пользователя
// @Description Возвращает записи леджера пользователя, новые первыми.
// @Tags Ledger
// @Produce  json
// @Param userID path string true "UUID пользователя"
// @Param limit query int false "Максимум записей (по умолчанию 50)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Записи леджера"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении"
// @Security BearerAuth
// @Router /ledger/{userID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ledger.list"
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

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	txs, err := h.service.ListLedgerTransactions(r.Context(), userUID, limit, offset)
	if err != nil {
		log.Error("failed to list ledger transactions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list ledger transactions"))
		return
	}

	log.Info("ledger transactions listed", sl.UID(userUID), slog.Int("count", len(txs)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"transactions": txs,
	}))
}
