// Package remindersender собирает сервис рассылки: потребитель очереди
// заданий на напоминания и отправка писем через SMTP.
package remindersender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ott-reminder/internal/config"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/smtp"
	"github.com/magabrotheeeer/ott-reminder/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/ott-reminder/internal/services/sender"
	"github.com/magabrotheeeer/ott-reminder/internal/storage/repository"
)

// App сервис рассылки напоминаний.
type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *repository.Storage
	sender *senderservice.Service
	logger *slog.Logger
}

// New собирает зависимости сервиса рассылки.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetReminderQueues())
	if err != nil {
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	sender := senderservice.New(transport, db, logger)

	return &App{
		conn:   conn,
		ch:     ch,
		db:     db,
		sender: sender,
		logger: logger,
	}, nil
}

// Run запускает потребителя очереди и работает до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.ForcedReminderQueue, a.sender.HandleReminderJob); err != nil {
		return err
	}
	a.logger.Info("reminder sender started", slog.String("queue", rabbitmq.ForcedReminderQueue))

	<-ctx.Done()
	a.logger.Info("shutting down reminder sender")
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close rabbitmq connection")
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database connection")
	}
	return nil
}
