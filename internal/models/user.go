// Package models содержит доменные структуры сервиса напоминаний:
// пользователей, их OTT-подписки, тарифные планы и задания на рассылку.
package models

import "time"

// Роли пользователей в порядке возрастания привилегий.
const (
	RoleFree    = "free"
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
	RoleOwner   = "owner"
)

// RoleRank задает числовой ранг каждой роли. Ранги используются только
// для сравнения тарифных уровней; доступ к командам проверяется строгим
// членством в списке разрешенных ролей, а не рангом.
var RoleRank = map[string]int{
	RoleFree:    1,
	RoleUser:    2,
	RoleManager: 3,
	RoleAdmin:   4,
	RoleOwner:   5,
}

// User представляет пользователя сервиса. Создается автоматически при
// первом обращении через бота с бесплатным тарифом и ролью free.
type User struct {
	UID              string     `json:"-"`                 // Внутренний идентификатор (uuid)
	UniqueID         string     `json:"unique_id"`         // Публичный короткий ID, например FREE1A2B3C4D
	TelegramChatID   int64      `json:"telegram_chat_id"`  // Идентификатор чата в Telegram
	TelegramUsername string     `json:"telegram_username"` // Имя пользователя в Telegram
	PlanType         string     `json:"plan_type"`         // Ключ тарифного плана
	Role             string     `json:"role"`              // Роль пользователя
	MaxSubscriptions int        `json:"max_subscriptions"` // Квота подписок, 999999 — без ограничений
	IsActive         bool       `json:"is_active"`         // Активен ли аккаунт
	ExpiryDate       *time.Time `json:"expiry_date"`       // Дата окончания тарифа, nil — бессрочный
	PasswordHash     string     `json:"-"`                 // Хэш пароля для веб-дашборда, пустой — не задан
	CreatedAt        time.Time  `json:"created_at"`
}

// HasRole сообщает, имеет ли пользователь ранг не ниже требуемой роли.
func (u *User) HasRole(required string) bool {
	return RoleRank[u.Role] >= RoleRank[required]
}

// IsPlanActive сообщает, действует ли еще тариф пользователя.
func (u *User) IsPlanActive(now time.Time) bool {
	if u.ExpiryDate == nil || u.PlanType == PlanFree {
		return true
	}
	return now.Before(*u.ExpiryDate)
}
