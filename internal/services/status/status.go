// Package status содержит бизнес-логику владения агрегатом статуса пользователя:
// ленивое создание, снапшоты для читающих коллабораторов, подтверждённые
// зачисления, флаги административного внимания и журнал заметок.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/retry"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// Repository определяет методы работы с агрегатом в хранилище.
type Repository interface {
	// GetStatus возвращает агрегат или models.ErrUserNotFound.
	GetStatus(ctx context.Context, userUID string) (*models.UserStatus, error)
	// CreateStatus вставляет новый агрегат; гонку создания молча проигрывает.
	CreateStatus(ctx context.Context, st *models.UserStatus) error
	// UpdateStatus перезаписывает агрегат с проверкой версии.
	UpdateStatus(ctx context.Context, st *models.UserStatus) error
}

// Cache описывает методы для кэширования снапшотов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует операции над агрегатом статуса.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// CacheKey возвращает ключ снапшота статуса в кеше.
func CacheKey(userUID string) string {
	return fmt.Sprintf("user_status:%s", userUID)
}

// GetOrCreate возвращает агрегат пользователя, создавая его при первом обращении.
// Запись никогда не удаляется после создания.
func (s *Service) GetOrCreate(ctx context.Context, userUID string) (*models.UserStatus, error) {
	st, err := s.repo.GetStatus(ctx, userUID)
	if err == nil {
		return st, nil
	}
	if err != models.ErrUserNotFound {
		return nil, err
	}

	st = models.NewUserStatus(userUID, s.now())
	if err := s.repo.CreateStatus(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info("created user status", sl.UID(userUID))

	// Перечитываем на случай проигранной гонки двух ленивых созданий.
	return s.repo.GetStatus(ctx, userUID)
}

// Snapshot возвращает снапшот статуса для дашбордов, используя кеш.
// Чтение может отставать от последней записи.
func (s *Service) Snapshot(ctx context.Context, userUID string) (*models.UserStatus, error) {
	var cached *models.UserStatus
	key := CacheKey(userUID)
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		return nil, err
	}
	if found {
		return cached, nil
	}

	st, err := s.GetOrCreate(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(key, st, time.Hour); err != nil {
		s.log.Warn("failed to cache user status", slog.String("key", key), slog.Any("err", err))
	}
	return st, nil
}

// CreditConfirmed применяет подтверждённое зачисление от внешнего коллаборатора
// (депозит или реферальная комиссия). Единственный путь увеличения баланса
// помимо дневных начислений.
func (s *Service) CreditConfirmed(ctx context.Context, req models.DummyCredit) (*models.UserStatus, error) {
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var result *models.UserStatus
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.GetOrCreate(ctx, req.UserUID)
		if err != nil {
			return err
		}

		st.Financial.CurrentBalance += req.Amount
		st.Activity.TotalTransactions++
		st.UpdatedAt = s.now()

		if err := s.repo.UpdateStatus(ctx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(req.UserUID)
	s.log.Info("confirmed credit applied", sl.UID(req.UserUID),
		slog.Float64("amount", req.Amount), slog.String("source", req.Source))
	return result, nil
}

// FlagForAttention выставляет флаг ручной проверки. Новая причина перезаписывает
// старую, история причин не ведётся — она живёт только в заметках.
func (s *Service) FlagForAttention(ctx context.Context, userUID, reason, priority string) error {
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.GetOrCreate(ctx, userUID)
		if err != nil {
			return err
		}

		st.AdminFlags.NeedsAttention = true
		st.AdminFlags.AttentionReason = reason
		st.AdminFlags.Priority = priority
		st.UpdatedAt = s.now()

		return s.repo.UpdateStatus(ctx, st)
	})
	if err != nil {
		return err
	}

	s.invalidate(userUID)
	s.log.Info("flagged for attention", sl.UID(userUID),
		slog.String("reason", reason), slog.String("priority", priority))
	return nil
}

// AddAdminNote добавляет заметку в журнал. Никогда не трогает флаг внимания
// и не теряет ранее сохранённые заметки.
func (s *Service) AddAdminNote(ctx context.Context, userUID, note, authorID, category string) error {
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.GetOrCreate(ctx, userUID)
		if err != nil {
			return err
		}

		st.AdminFlags.AdminNotes = append(st.AdminFlags.AdminNotes, models.AdminNote{
			ID:       uuid.New().String(),
			Note:     note,
			AddedBy:  authorID,
			AddedAt:  s.now(),
			Category: category,
		})
		st.UpdatedAt = s.now()

		return s.repo.UpdateStatus(ctx, st)
	})
	if err != nil {
		return err
	}

	s.invalidate(userUID)
	s.log.Info("admin note added", sl.UID(userUID), slog.String("category", category))
	return nil
}

func (s *Service) invalidate(userUID string) {
	key := CacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
	}
}
