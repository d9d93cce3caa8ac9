// Package sender отвечает за отправку писем-напоминаний об окончании
// подписок. Используется и синхронно из обработчика команд, и как
// потребитель заданий из очереди RabbitMQ.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/smtp"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// reminderSoonDays горизонт в днях, в пределах которого подписка
// попадает в письмо при обработке задания из очереди.
const reminderSoonDays = 3

// SubscriptionLister определяет доступ к подпискам пользователя.
type SubscriptionLister interface {
	ListByChatID(ctx context.Context, chatID int64) ([]*models.Subscription, error)
}

// Service реализует сборку и отправку писем-напоминаний.
type Service struct {
	transport smtp.TransportInterface
	subs      SubscriptionLister
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, subs SubscriptionLister, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		subs:      subs,
		log:       log,
		now:       time.Now,
	}
}

// SendExpiryReminder отправляет письмо со списком истекающих подписок
// на указанный адрес.
func (s *Service) SendExpiryReminder(ctx context.Context, to, username string, subs []*models.Subscription) error {
	const op = "sender.SendExpiryReminder"

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	body := s.buildEmail(to, username, subs)
	if err := s.send(to, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("sent expiry reminder",
		slog.String("to", to),
		slog.Int("subscriptions", len(subs)))
	return nil
}

// HandleReminderJob обрабатывает одно задание из очереди принудительных
// напоминаний: загружает подписки пользователя и отправляет письмо по
// первому адресу среди истекающих. Пользователи без истекающих подписок
// или без почты пропускаются без ошибки.
func (s *Service) HandleReminderJob(msg []byte) error {
	const op = "sender.HandleReminderJob"

	var job models.ReminderJob
	if err := json.Unmarshal(msg, &job); err != nil {
		return fmt.Errorf("%s: failed to unmarshal reminder job: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subs, err := s.subs.ListByChatID(ctx, job.TelegramChatID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	today := s.now().UTC()
	var expiring []*models.Subscription
	for _, sub := range subs {
		days := sub.DaysLeft(today)
		if days >= 0 && days <= reminderSoonDays {
			expiring = append(expiring, sub)
		}
	}
	if len(expiring) == 0 {
		s.log.Info("no expiring subscriptions, skipping",
			slog.Int64("chat_id", job.TelegramChatID))
		return nil
	}

	var to string
	for _, sub := range expiring {
		if sub.Email != "" {
			to = sub.Email
			break
		}
	}
	if to == "" {
		s.log.Info("no email address on expiring subscriptions, skipping",
			slog.Int64("chat_id", job.TelegramChatID))
		return nil
	}

	if err := s.SendExpiryReminder(ctx, to, job.TelegramUsername, expiring); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) send(to, message string) error {
	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Quit(); err != nil {
			s.log.Error("failed to quit smtp client", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		if closeErr := w.Close(); closeErr != nil {
			s.log.Error("failed to close data writer", sl.Err(closeErr))
		}
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}

func (s *Service) buildEmail(to, username string, subs []*models.Subscription) string {
	today := s.now().UTC()

	var rows strings.Builder
	for _, sub := range subs {
		days := sub.DaysLeft(today)
		left := fmt.Sprintf("%d day(s)", days)
		if days == 0 {
			left = "today"
		}
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			sub.ServiceName, sub.Username, sub.ExpiryDate.Format(models.DateLayout), left))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", s.transport.GetSMTPUser()))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString("Subject: =?UTF-8?B?8J+UlCBPVFQgU3Vic2NyaXB0aW9uIEV4cGlyeSBSZW1pbmRlcg==?=\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf(`<html><body>
<h2>&#128276; OTT Subscription Expiry Reminder</h2>
<p>Hello %s,</p>
<p>The following subscriptions are expiring soon:</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Service</th><th>Username</th><th>Expiry Date</th><th>Time Left</th></tr>
%s</table>
<p>Please renew them in time to avoid interruption.</p>
</body></html>`, username, rows.String()))
	return b.String()
}
