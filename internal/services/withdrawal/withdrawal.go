// Package withdrawal содержит лимитер и приоритизатор выводов: проверку баланса,
// дневного лимита с окном в один календарный день и расчёт приоритета обработки.
package withdrawal

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

// highVolumeThreshold — сумма, выше которой запрос автоматически помечается
// для ручной проверки.
const highVolumeThreshold = 5000.0

// Repository определяет методы хранилища, нужные лимитеру.
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

// Service реализует обработку запросов на вывод.
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

// ProcessWithdrawalRequest резервирует сумму вывода.
//
// Предусловия локальны и не повторяются автоматически: при нехватке баланса
// или превышении дневного лимита вызывающий процесс должен повторить запрос
// после пополнения или следующего сброса окна. Резерв, счётчики и возможный
// флаг внимания применяются одной записью агрегата.
func (s *Service) ProcessWithdrawalRequest(ctx context.Context, req models.DummyWithdrawal) (*models.WithdrawalResult, error) {
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var result *models.WithdrawalResult
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.statuses.GetOrCreate(ctx, req.UserUID)
		if err != nil {
			return err
		}

		if req.Amount > st.Financial.CurrentBalance {
			return models.ErrInsufficientBalance
		}

		now := s.now()
		limits := &st.Financial.Limits

		// Окно дневного лимита сбрасывается один раз в календарный день,
		// при первом запросе, наблюдаемом в этот день.
		if limits.LastLimitReset == nil || !sameCalendarDay(*limits.LastLimitReset, now) {
			limits.UsedDailyLimit = 0
			limits.LastLimitReset = &now
		}

		if limits.UsedDailyLimit+req.Amount > limits.DailyWithdrawalLimit {
			return models.ErrDailyLimitExceeded
		}

		st.Financial.CurrentBalance -= req.Amount
		st.Financial.Withdrawals.PendingAmount += req.Amount
		st.Financial.Withdrawals.PendingCount++
		st.Financial.Withdrawals.LastWithdrawalRequest = &now
		limits.UsedDailyLimit += req.Amount
		st.Activity.TotalTransactions++

		if req.Amount > highVolumeThreshold {
			st.AdminFlags.NeedsAttention = true
			st.AdminFlags.AttentionReason = models.AttentionReasonHighWithdrawal
			st.AdminFlags.Priority = models.AttentionPriorityHigh
		}
		st.UpdatedAt = now

		if err := s.repo.UpdateStatus(ctx, st); err != nil {
			return err
		}

		priority := tiers.ResolvePriority(
			st.Pioneer.IsActive && st.Pioneer.Benefits.FastWithdrawals,
			tiers.Tier(st.Subscription.CurrentPackage),
		)
		result = &models.WithdrawalResult{
			Success:                 true,
			Priority:                priority.Level,
			EstimatedProcessingTime: priority.EstimatedProcessingTime,
			PendingAmount:           st.Financial.Withdrawals.PendingAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(req.UserUID)
	s.log.Info("withdrawal reserved", sl.UID(req.UserUID),
		slog.Float64("amount", req.Amount), slog.String("priority", result.Priority))
	return result, nil
}

// sameCalendarDay сравнивает календарные дни в локальной зоне процесса.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Service) invalidate(userUID string) {
	key := servstatus.CacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
	}
}
