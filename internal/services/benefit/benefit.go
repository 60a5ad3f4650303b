// Package benefit содержит контроллер цикла начислений: активацию пакета,
// продвижение 9-дневного цикла на один день и массовую обработку.
//
// День 9 — обязательная пауза: начислений нет, на следующем наступившем
// тике цикл перезапускается с первого дня. Подписка продолжает циклы
// до истечения срока пакета.
package benefit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/retry"
	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
	servstatus "github.com/magabrotheeeer/benefit-engine/internal/services/status"
	"github.com/magabrotheeeer/benefit-engine/internal/tiers"
)

// Срок действия пакета с момента активации.
const packageLifetime = 45 * 24 * time.Hour

// benefitInterval — шаг между дневными тиками начислений.
const benefitInterval = 24 * time.Hour

// Причины отказа в начислении, возвращаемые с processed:false.
const (
	ReasonNoActivePackage = "no active package"
	ReasonPackageExpired  = "package expired"
	ReasonNotDue          = "not due"
	ReasonPauseDay        = "pause day"
	ReasonCyclePaused     = "cycle paused"
)

// Repository определяет методы хранилища, нужные контроллеру.
type Repository interface {
	// UpdateStatus перезаписывает агрегат с проверкой версии.
	UpdateStatus(ctx context.Context, st *models.UserStatus) error
	// ListActiveSubscriptionUIDs возвращает пользователей с активным пакетом.
	ListActiveSubscriptionUIDs(ctx context.Context) ([]string, error)
}

// StatusProvider выдаёт агрегат пользователя, создавая его при первом обращении.
type StatusProvider interface {
	GetOrCreate(ctx context.Context, userUID string) (*models.UserStatus, error)
}

// LedgerPublisher — выходной интерфейс движка: запись о начислении
// для внешнего леджер-коллаборатора.
type LedgerPublisher interface {
	PublishEarning(tx models.LedgerTransaction) error
}

// CacheInvalidator сбрасывает закешированный снапшот после мутации.
type CacheInvalidator interface {
	Invalidate(key string) error
}

// Service реализует контроллер цикла начислений.
type Service struct {
	repo     Repository
	statuses StatusProvider
	ledger   LedgerPublisher
	cache    CacheInvalidator
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый Service.
func New(repo Repository, statuses StatusProvider, ledger LedgerPublisher, cache CacheInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		statuses: statuses,
		ledger:   ledger,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// ActivatePackage активирует тарифный пакет: цикл сбрасывается на день 1,
// сумма добавляется к инвестициям, лимиты вывода берутся из таблицы тарифов.
func (s *Service) ActivatePackage(ctx context.Context, req models.DummyActivatePackage) (*models.UserStatus, error) {
	tier := tiers.Tier(req.PackageType)
	limits, ok := tiers.LimitsFor(tier)
	if !ok {
		return nil, models.ErrInvalidPackage
	}
	if req.Amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var result *models.UserStatus
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.statuses.GetOrCreate(ctx, req.UserUID)
		if err != nil {
			return err
		}

		now := s.now()
		expiresAt := now.Add(packageLifetime)
		nextBenefit := now.Add(benefitInterval)

		st.Subscription.CurrentPackage = string(tier)
		st.Subscription.PackageStatus = models.PackageStatusActive
		st.Subscription.ActivatedAt = &now
		st.Subscription.ExpiresAt = &expiresAt
		st.Subscription.BenefitCycle = models.BenefitCycle{
			CurrentDay:      1,
			CycleStartDate:  &now,
			NextBenefitDate: &nextBenefit,
			IsPaused:        false,
		}
		st.Subscription.Benefits.DailyRate = models.DailyBenefitRate
		st.Calculated.TotalInvested += req.Amount
		st.Financial.Limits.DailyWithdrawalLimit = limits.Daily
		st.Financial.Limits.MonthlyWithdrawalLimit = limits.Monthly
		st.Activity.IsActive = true
		st.Activity.TotalTransactions++
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
	s.log.Info("package activated", sl.UID(req.UserUID),
		slog.String("package", req.PackageType), slog.Float64("amount", req.Amount))
	return result, nil
}

// ProcessDailyBenefits продвигает цикл пользователя не более чем на один день.
// Повторный вызов до наступления next_benefit_date ничего не меняет и
// возвращает processed:false.
func (s *Service) ProcessDailyBenefits(ctx context.Context, userUID string) (*models.BenefitResult, error) {
	var result *models.BenefitResult
	err := retry.OnConflict(ctx, func(ctx context.Context) error {
		st, err := s.statuses.GetOrCreate(ctx, userUID)
		if err != nil {
			return err
		}

		now := s.now()
		cycle := &st.Subscription.BenefitCycle

		if st.Subscription.PackageStatus != models.PackageStatusActive {
			result = skipped(st, ReasonNoActivePackage)
			return nil
		}
		if st.Subscription.ExpiresAt != nil && now.After(*st.Subscription.ExpiresAt) {
			result = skipped(st, ReasonPackageExpired)
			return nil
		}
		if cycle.NextBenefitDate != nil && now.Before(*cycle.NextBenefitDate) {
			result = skipped(st, ReasonNotDue)
			return nil
		}

		if cycle.CurrentDay == models.PauseDay {
			// День паузы: финансовых мутаций нет, цикл перезапускается с первого дня.
			next := now.Add(benefitInterval)
			cycle.CurrentDay = 1
			cycle.CycleStartDate = &now
			cycle.NextBenefitDate = &next
			cycle.IsPaused = false
			st.UpdatedAt = now

			if err := s.repo.UpdateStatus(ctx, st); err != nil {
				return err
			}
			s.invalidate(userUID)
			result = skipped(st, ReasonPauseDay)
			return nil
		}

		if cycle.IsPaused {
			result = skipped(st, ReasonCyclePaused)
			return nil
		}

		amount := st.Calculated.TotalInvested * st.Subscription.Benefits.DailyRate
		accruedDay := cycle.CurrentDay

		st.Subscription.Benefits.TotalEarned += amount
		st.Subscription.Benefits.LastCalculatedAt = &now
		st.Subscription.LastBenefitDate = &now
		st.Financial.CurrentBalance += amount
		st.Calculated.TotalReturned += amount
		st.Activity.TotalTransactions++

		next := now.Add(benefitInterval)
		cycle.CurrentDay++
		cycle.NextBenefitDate = &next
		if cycle.CurrentDay == models.PauseDay {
			cycle.IsPaused = true
		}
		st.UpdatedAt = now

		if err := s.repo.UpdateStatus(ctx, st); err != nil {
			return err
		}

		tx := models.LedgerTransaction{
			ID:        uuid.New().String(),
			UserUID:   userUID,
			Type:      models.LedgerTypeEarnings,
			Subtype:   models.LedgerSubtypeAutoEarning,
			Amount:    amount,
			Currency:  "USD",
			Day:       accruedDay,
			Rate:      st.Subscription.Benefits.DailyRate,
			Timestamp: now,
		}
		if err := s.ledger.PublishEarning(tx); err != nil {
			s.log.Error("failed to publish ledger transaction", sl.UID(userUID), sl.Err(err))
		}

		s.invalidate(userUID)
		result = &models.BenefitResult{
			Processed:   true,
			Amount:      amount,
			CurrentDay:  cycle.CurrentDay,
			TotalEarned: st.Subscription.Benefits.TotalEarned,
			NewBalance:  st.Financial.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Processed {
		s.log.Info("daily benefit accrued", sl.UID(userUID),
			slog.Float64("amount", result.Amount), slog.Int("day", result.CurrentDay))
	}
	return result, nil
}

// ProcessAllDailyBenefits обрабатывает всех пользователей с активным пакетом.
// Каждый пользователь обрабатывается независимо: ошибка одного фиксируется
// в сводке и не прерывает остальных.
func (s *Service) ProcessAllDailyBenefits(ctx context.Context) (*models.BulkBenefitResult, error) {
	uids, err := s.repo.ListActiveSubscriptionUIDs(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.BulkBenefitResult{}
	for _, uid := range uids {
		res, err := s.ProcessDailyBenefits(ctx, uid)
		if err != nil {
			if summary.Failed == nil {
				summary.Failed = make(map[string]string)
			}
			summary.Failed[uid] = err.Error()
			s.log.Error("failed to process user benefits", sl.UID(uid), sl.Err(err))
			continue
		}
		if res.Processed {
			summary.Processed++
		} else {
			summary.Skipped++
		}
	}

	s.log.Info("bulk benefit processing finished",
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", len(summary.Failed)))
	return summary, nil
}

func skipped(st *models.UserStatus, reason string) *models.BenefitResult {
	return &models.BenefitResult{
		Processed:   false,
		Reason:      reason,
		CurrentDay:  st.Subscription.BenefitCycle.CurrentDay,
		TotalEarned: st.Subscription.Benefits.TotalEarned,
		NewBalance:  st.Financial.CurrentBalance,
	}
}

func (s *Service) invalidate(userUID string) {
	key := servstatus.CacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
	}
}
