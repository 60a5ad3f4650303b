// Package recorder содержит обработчик сообщений леджера из очереди:
// разбор записи о начислении и её сохранение в хранилище.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// Repository определяет методы хранилища записей леджера.
type Repository interface {
	InsertLedgerTransaction(ctx context.Context, tx models.LedgerTransaction) error
}

// Service сохраняет принятые из очереди записи леджера.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// HandleEarning разбирает сообщение о начислении и сохраняет его.
// Повторная доставка того же сообщения безопасна: вставка идемпотентна по id.
func (s *Service) HandleEarning(body []byte) error {
	const op = "recorder.HandleEarning"

	var tx models.LedgerTransaction
	if err := json.Unmarshal(body, &tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.InsertLedgerTransaction(context.Background(), tx); err != nil {
		s.log.Error("failed to insert ledger transaction", sl.Err(err),
			slog.String("id", tx.ID))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("ledger transaction recorded", sl.UID(tx.UserUID),
		slog.String("id", tx.ID), slog.Float64("amount", tx.Amount))
	return nil
}
