// Package benefitscheduler содержит воркер периодической массовой обработки
// дневных начислений.
package benefitscheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/benefit-engine/internal/cache"
	"github.com/magabrotheeeer/benefit-engine/internal/config"
	librabbit "github.com/magabrotheeeer/benefit-engine/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/benefit-engine/internal/rabbitmq"
	benefitservice "github.com/magabrotheeeer/benefit-engine/internal/services/benefit"
	schedulerservice "github.com/magabrotheeeer/benefit-engine/internal/services/scheduler"
	statusservice "github.com/magabrotheeeer/benefit-engine/internal/services/status"
	"github.com/magabrotheeeer/benefit-engine/internal/storage/repository"
)

// App представляет приложение воркера начислений.
type App struct {
	schedulerService *schedulerservice.Service
	interval         time.Duration
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *repository.Storage
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр воркера.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, librabbit.GetLedgerQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	statusService := statusservice.New(db, cacheRedis, logger)
	ledgerPublisher := rabbitmq.NewLedgerPublisher(ch)
	benefitService := benefitservice.New(db, statusService, ledgerPublisher, cacheRedis, logger)
	schedulerService := schedulerservice.New(benefitService, logger)

	return &App{
		schedulerService: schedulerService,
		interval:         cfg.SchedulerInterval,
		conn:             conn,
		ch:               ch,
		db:               db,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает периодическую обработку начислений.
func (a *App) Run(ctx context.Context) error {
	go a.schedulerService.Run(ctx, a.interval)

	<-ctx.Done()

	a.logger.Info("shutting down benefit scheduler")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}

	return nil
}
