// Package identity реализует разрешение и создание пользователей.
//
// Пользователь создается автоматически при первом обращении через бота:
// бесплатный тариф, роль free, квота тарифа. Записи кешируются в Redis
// по идентификатору чата и инвалидируются при изменениях.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ott-reminder/internal/lib/password"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
	"github.com/magabrotheeeer/ott-reminder/internal/storage/repository"
)

// UserRepository определяет методы хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	FindUserByChatID(ctx context.Context, chatID int64) (*models.User, error)
	FindUserByUniqueID(ctx context.Context, uniqueID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, uniqueID, role string) error
	UpdateUserPassword(ctx context.Context, uniqueID, passwordHash string) error
}

// Cache описывает методы для кэширования записей пользователей.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику работы с пользователями.
type Service struct {
	repo  UserRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func chatCacheKey(chatID int64) string {
	return fmt.Sprintf("user:chat:%d", chatID)
}

// ResolveByChatID возвращает пользователя по идентификатору чата,
// создавая его с настройками бесплатного тарифа, если он не найден.
func (s *Service) ResolveByChatID(ctx context.Context, chatID int64, username string) (*models.User, error) {
	const op = "identity.ResolveByChatID"

	cacheKey := chatCacheKey(chatID)
	var cached *models.User
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read user cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	user, err := s.repo.FindUserByChatID(ctx, chatID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user == nil || errors.Is(err, repository.ErrUserNotFound) {
		user, err = s.createDefault(ctx, chatID, username)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("created new user", slog.String("unique_id", user.UniqueID))
	}

	if err := s.cache.Set(cacheKey, user, time.Hour); err != nil {
		s.log.Warn("failed to cache user", slog.String("key", cacheKey), sl.Err(err))
	}
	return user, nil
}

func (s *Service) createDefault(ctx context.Context, chatID int64, username string) (*models.User, error) {
	if username == "" {
		username = fmt.Sprintf("User_%d", chatID)
	}
	plan := models.Plans[models.PlanFree]
	user := models.User{
		UniqueID:         NewUniqueID(),
		TelegramChatID:   chatID,
		TelegramUsername: username,
		PlanType:         models.PlanFree,
		Role:             models.RoleFree,
		MaxSubscriptions: plan.MaxSubscriptions,
		IsActive:         true,
		CreatedAt:        time.Now(),
	}
	uid, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.UID = uid
	return &user, nil
}

// FindByUniqueID возвращает пользователя по публичному короткому ID.
func (s *Service) FindByUniqueID(ctx context.Context, uniqueID string) (*models.User, error) {
	return s.repo.FindUserByUniqueID(ctx, uniqueID)
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateRole меняет роль пользователя и инвалидирует его кеш.
func (s *Service) UpdateRole(ctx context.Context, uniqueID, role string) error {
	const op = "identity.UpdateRole"
	user, err := s.repo.FindUserByUniqueID(ctx, uniqueID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserRole(ctx, uniqueID, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(chatCacheKey(user.TelegramChatID)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.Err(err))
	}
	return nil
}

// SetPassword задает пароль для входа в веб-дашборд.
func (s *Service) SetPassword(ctx context.Context, uniqueID, plain string) error {
	const op = "identity.SetPassword"
	user, err := s.repo.FindUserByUniqueID(ctx, uniqueID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	hash, err := password.GetHash(plain)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserPassword(ctx, uniqueID, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(chatCacheKey(user.TelegramChatID)); err != nil {
		s.log.Warn("failed to invalidate user cache", sl.Err(err))
	}
	return nil
}

// CheckPassword проверяет пароль дашборда. Пока пароль не задан,
// вход разрешен по одному лишь публичному ID.
func (s *Service) CheckPassword(user *models.User, plain string) error {
	if user.PasswordHash == "" {
		return nil
	}
	return password.CompareHash(user.PasswordHash, plain)
}

// NewUniqueID генерирует публичный короткий ID вида FREE1A2B3C4D.
func NewUniqueID() string {
	return "FREE" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
