// Package dashboard реализует HTTP-обработчик данных веб-дашборда.
//
// Обработчик собирает все, что нужно интерфейсу после входа: сведения об
// аккаунте, подписки со статусом истечения, команды, доступные роли
// пользователя, и таблицу тарифов. Публичный ID берется из контекста,
// установленного JWT middleware.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ott-reminder/internal/http/response"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// soonDays окно статуса "скоро истекает" в днях для таблицы дашборда.
const soonDays = 3

// Handler обрабатывает HTTP-запросы данных дашборда.
type Handler struct {
	log      *slog.Logger
	identity Identity
	subs     SubscriptionLister
	registry *command.Registry
}

// Identity описывает поиск пользователя по публичному ID.
type Identity interface {
	FindByUniqueID(ctx context.Context, uniqueID string) (*models.User, error)
}

// SubscriptionLister определяет доступ к подпискам пользователя.
type SubscriptionLister interface {
	ListByChatID(ctx context.Context, chatID int64) ([]*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, identity Identity, subs SubscriptionLister, registry *command.Registry) *Handler {
	return &Handler{
		log:      log,
		identity: identity,
		subs:     subs,
		registry: registry,
	}
}

// subscriptionView подписка с вычисленным статусом для таблицы дашборда.
type subscriptionView struct {
	ID          string `json:"id"`
	ServiceName string `json:"service"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	ExpiryDate  string `json:"expiry"`
	Amount      string `json:"amount_received"`
	DaysLeft    int    `json:"days_left"`
	Status      string `json:"status"`
}

// ServeHTTP godoc
// @Summary Данные дашборда
// @Description Возвращает аккаунт, подписки со статусами, доступные команды и тарифы.
// @Tags Dashboard
// @Produce  json
// @Success 200 {object} map[string]any "Данные дашборда"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uniqueID, ok := r.Context().Value(middlewarectx.UniqueID).(string)
	if !ok || uniqueID == "" {
		log.Error("unique id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	user, err := h.identity.FindByUniqueID(r.Context(), uniqueID)
	if err != nil {
		log.Error("failed to find user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load user"))
		return
	}

	subs, err := h.subs.ListByChatID(r.Context(), user.TelegramChatID)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load subscriptions"))
		return
	}

	today := time.Now().UTC()
	views := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, subscriptionView{
			ID:          sub.ID,
			ServiceName: sub.ServiceName,
			Username:    sub.Username,
			Email:       sub.Email,
			ExpiryDate:  sub.ExpiryDate.Format(models.DateLayout),
			Amount:      sub.AmountReceived,
			DaysLeft:    sub.DaysLeft(today),
			Status:      sub.Status(today, soonDays),
		})
	}

	plans := make([]models.Plan, 0, len(models.PlanOrder))
	for _, key := range models.PlanOrder {
		plans = append(plans, models.Plans[key])
	}

	log.Info("dashboard data loaded",
		slog.String("unique_id", user.UniqueID),
		slog.Int("subscriptions", len(views)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": map[string]any{
			"unique_id":         user.UniqueID,
			"telegram_username": user.TelegramUsername,
			"plan_type":         user.PlanType,
			"role":              user.Role,
			"max_subscriptions": user.MaxSubscriptions,
			"is_active":         user.IsActive,
		},
		"subscriptions": views,
		"commands":      h.registry.ForRole(user.Role),
		"plans":         plans,
	}))
}
