package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// ErrUserNotFound возвращается, когда пользователь отсутствует в базе.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `uid, unique_id, telegram_chat_id, telegram_username, plan_type,
			      role, max_subscriptions, is_active, expiry_date, password_hash, created_at`

// CreateUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (unique_id, telegram_chat_id, telegram_username, plan_type,
			      role, max_subscriptions, is_active, expiry_date, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UniqueID, user.TelegramChatID, user.TelegramUsername, user.PlanType,
		user.Role, user.MaxSubscriptions, user.IsActive, user.ExpiryDate,
		user.CreatedAt).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// FindUserByChatID возвращает пользователя по идентификатору чата Telegram.
func (s *Storage) FindUserByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	const op = "storage.FindUserByChatID"
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_chat_id = $1`
	return s.scanUser(ctx, op, query, chatID)
}

// FindUserByUniqueID возвращает пользователя по его публичному короткому ID.
func (s *Storage) FindUserByUniqueID(ctx context.Context, uniqueID string) (*models.User, error) {
	const op = "storage.FindUserByUniqueID"
	query := `SELECT ` + userColumns + ` FROM users WHERE unique_id = $1`
	return s.scanUser(ctx, op, query, uniqueID)
}

func (s *Storage) scanUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var expiryDate sql.NullTime
	var passwordHash sql.NullString
	if err := row.Scan(&u.UID, &u.UniqueID, &u.TelegramChatID, &u.TelegramUsername,
		&u.PlanType, &u.Role, &u.MaxSubscriptions, &u.IsActive, &expiryDate,
		&passwordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if expiryDate.Valid {
		u.ExpiryDate = &expiryDate.Time
	}
	if passwordHash.Valid {
		u.PasswordHash = passwordHash.String
	}
	return u, nil
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, uid`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		var expiryDate sql.NullTime
		var passwordHash sql.NullString
		if err = rows.Scan(&u.UID, &u.UniqueID, &u.TelegramChatID, &u.TelegramUsername,
			&u.PlanType, &u.Role, &u.MaxSubscriptions, &u.IsActive, &expiryDate,
			&passwordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if expiryDate.Valid {
			u.ExpiryDate = &expiryDate.Time
		}
		if passwordHash.Valid {
			u.PasswordHash = passwordHash.String
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserRole обновляет роль пользователя по его публичному ID.
func (s *Storage) UpdateUserRole(ctx context.Context, uniqueID, role string) error {
	const op = "storage.UpdateUserRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $1 WHERE unique_id = $2`
	result, err := s.DB.ExecContext(ctx, query, role, uniqueID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// UpdateUserPassword сохраняет хэш пароля для входа в веб-дашборд.
func (s *Storage) UpdateUserPassword(ctx context.Context, uniqueID, passwordHash string) error {
	const op = "storage.UpdateUserPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE unique_id = $2`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, uniqueID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
