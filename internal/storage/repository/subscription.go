package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// CreateSubscription вставляет новую подписку и возвращает её сгенерированный ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	id := sub.ID
	if id == "" {
		id = uuid.NewString()
	}
	query := `INSERT INTO subscriptions (id, telegram_chat_id, service_name, username,
			      email, expiry_date, amount_received, note, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		id, sub.TelegramChatID, sub.ServiceName, sub.Username, sub.Email,
		sub.ExpiryDate, sub.AmountReceived, sub.Note, sub.CreatedAt).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// RemoveSubscription удаляет подписку по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListByChatID возвращает все подписки владельца чата в порядке создания.
func (s *Storage) ListByChatID(ctx context.Context, chatID int64) ([]*models.Subscription, error) {
	const op = "storage.ListByChatID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, telegram_chat_id, service_name, username, email,
			      expiry_date, amount_received, note, created_at
			  FROM subscriptions
			  WHERE telegram_chat_id = $1
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err = rows.Scan(&sub.ID, &sub.TelegramChatID, &sub.ServiceName, &sub.Username,
			&sub.Email, &sub.ExpiryDate, &sub.AmountReceived, &sub.Note, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountByChatID возвращает число подписок владельца чата.
func (s *Storage) CountByChatID(ctx context.Context, chatID int64) (int, error) {
	const op = "storage.CountByChatID"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE telegram_chat_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, chatID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
