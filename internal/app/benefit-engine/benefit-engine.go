package benefitengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/benefit-engine/internal/cache"
	"github.com/magabrotheeeer/benefit-engine/internal/config"
	libjwt "github.com/magabrotheeeer/benefit-engine/internal/lib/jwt"
	librabbit "github.com/magabrotheeeer/benefit-engine/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/benefit-engine/internal/migrations"
	"github.com/magabrotheeeer/benefit-engine/internal/rabbitmq"
	benefitservice "github.com/magabrotheeeer/benefit-engine/internal/services/benefit"
	pioneerservice "github.com/magabrotheeeer/benefit-engine/internal/services/pioneer"
	statusservice "github.com/magabrotheeeer/benefit-engine/internal/services/status"
	withdrawalservice "github.com/magabrotheeeer/benefit-engine/internal/services/withdrawal"
	"github.com/magabrotheeeer/benefit-engine/internal/storage/repository"
)

// App собирает HTTP API движка начислений: хранилище, кеш, подключение
// к RabbitMQ для публикации записей леджера и роутер с обработчиками.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("cache not initialized: %w", err)
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
	ledgerPublisher := rabbitmq.NewLedgerPublisher(ch)

	statusService := statusservice.New(db, cacheRedis, logger)
	benefitService := benefitservice.New(db, statusService, ledgerPublisher, cacheRedis, logger)
	withdrawalService := withdrawalservice.New(db, statusService, cacheRedis, logger)
	pioneerService := pioneerservice.New(db, statusService, cacheRedis, logger)

	jwtMaker := libjwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker,
		statusService, benefitService, withdrawalService, pioneerService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		if dbErr := a.db.DB.Close(); dbErr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", dbErr))
		}
		return err
	}
}
