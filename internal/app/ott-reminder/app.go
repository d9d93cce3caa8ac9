// Package ottreminder собирает основной сервис: хранилище, кеш, брокер
// очередей, бизнес-сервисы и HTTP-сервер с единой точкой входа команд.
package ottreminder

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ott-reminder/internal/cache"
	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/config"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/jwt"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/smtp"
	"github.com/magabrotheeeer/ott-reminder/internal/migrations"
	"github.com/magabrotheeeer/ott-reminder/internal/rabbitmq"
	identityservice "github.com/magabrotheeeer/ott-reminder/internal/services/identity"
	processorservice "github.com/magabrotheeeer/ott-reminder/internal/services/processor"
	senderservice "github.com/magabrotheeeer/ott-reminder/internal/services/sender"
	"github.com/magabrotheeeer/ott-reminder/internal/storage/repository"
)

// App основной сервис приложения.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
}

// New собирает все зависимости основного сервиса.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetReminderQueues())
	if err != nil {
		return nil, err
	}

	registry := command.NewRegistry()
	identity := identityservice.New(db, cacheRedis, logger)
	transport := smtp.NewTransport(cfg, logger)
	mailer := senderservice.New(transport, db, logger)
	queue := rabbitmq.NewReminderQueue(ch)
	processor := processorservice.New(registry, db, identity, mailer, queue, logger)
	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, registry, identity, processor, db, maker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и ждет либо его остановки, либо отмены
// контекста, после чего завершает работу с таймаутом.
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
		if closeErr := a.amqpConn.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection")
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database connection")
		}
		return err
	}
}
