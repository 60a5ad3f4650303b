// Package ledgerrecorder содержит потребителя очереди леджера: читает записи
// о начислениях из RabbitMQ и сохраняет их в хранилище.
package ledgerrecorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/benefit-engine/internal/config"
	librabbit "github.com/magabrotheeeer/benefit-engine/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/benefit-engine/internal/rabbitmq"
	recorderservice "github.com/magabrotheeeer/benefit-engine/internal/services/recorder"
	"github.com/magabrotheeeer/benefit-engine/internal/storage/repository"
)

// App представляет приложение записи леджера.
type App struct {
	recorderService *recorderservice.Service
	conn            *amqp.Connection
	ch              *amqp.Channel
	db              *repository.Storage
	logger          *slog.Logger
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

// New создает новый экземпляр приложения.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, librabbit.GetLedgerQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	recorderService := recorderservice.New(db, logger)

	return &App{
		recorderService: recorderService,
		conn:            conn,
		ch:              ch,
		db:              db,
		logger:          logger,
	}, nil
}

// Run запускает потребителя очереди начислений.
func (a *App) Run(ctx context.Context) error {
	for _, q := range librabbit.GetLedgerQueues() {
		if err := rabbitmq.ConsumeMessages(ctx, a.ch, q.QueueName, a.recorderService.HandleEarning); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), slog.Any("err", err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("ledger recorder shutting down gracefully")

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
