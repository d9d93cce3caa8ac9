package models

import "time"

// DateLayout формат календарной даты окончания подписки.
const DateLayout = "2006-01-02"

// Subscription представляет одну OTT-подписку пользователя.
// Дата окончания хранится как календарная дата без времени суток.
// Истекшие подписки не удаляются автоматически, а лишь помечаются
// статусом при выводе.
type Subscription struct {
	ID             string    `json:"id"`              // Сгенерированный идентификатор (uuid)
	TelegramChatID int64     `json:"-"`               // Чат владельца
	ServiceName    string    `json:"service"`         // Название сервиса, например Netflix
	Username       string    `json:"username"`        // Логин аккаунта в сервисе
	Email          string    `json:"email"`           // Почта аккаунта в сервисе
	ExpiryDate     time.Time `json:"expiry"`          // Дата окончания
	AmountReceived string    `json:"amount_received"` // Оплаченная сумма, свободный текст, по умолчанию "0"
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"created_at"`
}

// Статусы подписки при выводе списка.
const (
	StatusActive       = "ACTIVE"
	StatusExpiringSoon = "EXPIRING_SOON"
	StatusExpired      = "EXPIRED"
)

// DaysLeft возвращает число полных календарных дней до окончания подписки
// относительно переданной даты. Отрицательное значение — подписка истекла.
func (s *Subscription) DaysLeft(today time.Time) int {
	expiry := time.Date(s.ExpiryDate.Year(), s.ExpiryDate.Month(), s.ExpiryDate.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(day).Hours() / 24)
}

// Status классифицирует подписку: истекшая, скоро истекающая (в пределах
// soonDays дней) или активная.
func (s *Subscription) Status(today time.Time, soonDays int) string {
	days := s.DaysLeft(today)
	switch {
	case days < 0:
		return StatusExpired
	case days <= soonDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// ReminderJob задание на отправку напоминания одному пользователю.
// Публикуется командой forcedreminder и потребляется сервисом рассылки.
type ReminderJob struct {
	TelegramChatID   int64  `json:"telegram_chat_id"`
	TelegramUsername string `json:"telegram_username"`
}
