// Package pioneer содержит машину состояний активации премиального уровня:
// 48-часовой период ожидания между активацией и включением привилегий.
package pioneer

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/benefit-engine/internal/lib/retry"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
	servstatus "github.com/magabrotheeeer/benefit-engine/internal/services/status"
	"github.com/magabrotheeeer/benefit-engine/internal/tiers"
)

// waitingPeriod — обязательное окно ожидания после активации уровня.
const waitingPeriod = 48 * time.Hour

// Repository определяет методы хранилища, нужные машине состояний.
type Repository interface {
	UpdateStatus(ctx context.Context, st *models.UserStatus) error
}

// StatusProvider выдаёт агрегат пользователя, создавая его при первом обращении.
type StatusProvider interface {
	GetOrCreate(ctx context.Context, userUID string) (*models.UserStatus, error)
}

// CacheInvalidator сбрасывает закешированный снапшот после мутации.
type CacheInvalidator interface {
	Invalidate(key string) error
}

// Service реализует активацию и завершение периода ожидания пионера.
type Service struct {
	repo     Repository
	statuses StatusProvider
	cache    CacheInvalidator
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый Service.
func New(repo Repository, statuses StatusProvider, cache CacheInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		statuses: statuses,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// ActivatePioneer начинает 48-часовой период ожидания. Пока период не завершён,
// уровень неактивен: IsActive и IsInWaitingPeriod взаимоисключающие.
// Запись помечается для ручной проверки с причиной pioneer_waiting_period,
// которая снимается автоматически при завершении периода.
func (s *Service) ActivatePioneer(ctx context.Context, req models.DummyActivatePioneer) (*models.UserStatus, error) {
	level := tiers.PioneerLevel(req.Level)
	perks, ok := tiers.PerksFor(level)
	if !ok {
		return nil, models.ErrInvalidPioneerLevel
	}

	var result *models.UserStatus
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.statuses.GetOrCreate(ctx, req.UserUID)
		if err != nil {
			return err
		}

		now := s.now()
		endsAt := now.Add(waitingPeriod)
		expiresAt := now.AddDate(0, 0, req.DurationDays)

		st.Pioneer.IsActive = false
		st.Pioneer.Level = string(level)
		st.Pioneer.ActivatedAt = &now
		st.Pioneer.ExpiresAt = &expiresAt
		st.Pioneer.WaitingPeriod = models.WaitingPeriod{
			IsInWaitingPeriod: true,
			EndsAt:            &endsAt,
		}
		st.Pioneer.Benefits = models.PioneerBenefits{
			DiscountPercentage: perks.DiscountPercentage,
			PrioritySupport:    perks.PrioritySupport,
			FastWithdrawals:    perks.FastWithdrawals,
		}
		st.AdminFlags.NeedsAttention = true
		st.AdminFlags.AttentionReason = models.AttentionReasonPioneerWaiting
		st.AdminFlags.Priority = models.AttentionPriorityNormal
		st.UpdatedAt = now

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
	s.log.Info("pioneer waiting period started", sl.UID(req.UserUID),
		slog.String("level", req.Level), slog.Int("duration_days", req.DurationDays))
	return result, nil
}

// CompleteWaitingPeriod включает уровень пионера после истечения 48 часов.
// Флаг внимания снимается только если его причина — именно период ожидания;
// флаг, выставленный по другой причине, не трогается.
func (s *Service) CompleteWaitingPeriod(ctx context.Context, userUID string) (*models.UserStatus, error) {
	var result *models.UserStatus
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.statuses.GetOrCreate(ctx, userUID)
		if err != nil {
			return err
		}

		if !st.Pioneer.WaitingPeriod.IsInWaitingPeriod {
			return models.ErrNotInWaitingPeriod
		}
		now := s.now()
		if st.Pioneer.WaitingPeriod.EndsAt != nil && now.Before(*st.Pioneer.WaitingPeriod.EndsAt) {
			return models.ErrWaitingPeriodNotElapsed
		}

		st.Pioneer.IsActive = true
		st.Pioneer.WaitingPeriod = models.WaitingPeriod{}

		if st.AdminFlags.AttentionReason == models.AttentionReasonPioneerWaiting {
			st.AdminFlags.NeedsAttention = false
			st.AdminFlags.AttentionReason = ""
			st.AdminFlags.Priority = models.AttentionPriorityNormal
		}
		st.UpdatedAt = now

		if err := s.repo.UpdateStatus(ctx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(userUID)
	s.log.Info("pioneer activated", sl.UID(userUID), slog.String("level", result.Pioneer.Level))
	return result, nil
}

func (s *Service) invalidate(userUID string) {
	key := servstatus.CacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
	}
}
