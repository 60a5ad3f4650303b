// Package scheduler содержит периодический запуск массовой обработки начислений.
// Движок не имеет собственного планировщика внутри API-процесса: тики запускает
// отдельный воркер по таймеру либо администратор вручную через API.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/benefit-engine/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// BenefitProcessor запускает массовую обработку дневных начислений.
type BenefitProcessor interface {
	ProcessAllDailyBenefits(ctx context.Context) (*models.BulkBenefitResult, error)
}

// Service периодически вызывает массовую обработку начислений.
type Service struct {
	benefits BenefitProcessor
	log      *slog.Logger
}

// New создает новый Service.
func New(benefits BenefitProcessor, log *slog.Logger) *Service {
	return &Service{
		benefits: benefits,
		log:      log,
	}
}

// Run выполняет обработку сразу и далее по таймеру, пока контекст не отменён.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	s.log.Info("starting daily benefit processing run")
	summary, err := s.benefits.ProcessAllDailyBenefits(ctx)
	if err != nil {
		s.log.Error("benefit processing run failed", sl.Err(err))
		return
	}
	s.log.Info("benefit processing run finished",
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", len(summary.Failed)))
}
