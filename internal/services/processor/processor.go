// Package processor реализует бизнес-логику обработки команд бота.
//
// Один и тот же процессор обслуживает оба фронтенда: Telegram-бот и
// веб-дашборд. Любой вызов проходит одинаковый путь: поиск команды в
// реестре, проверка роли, валидация аргументов и вызов обработчика.
// Обработчики сопоставлены командам явной таблицей, строящейся один раз
// в конструкторе.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// SubscriptionRepository определяет методы хранилища подписок,
// необходимые обработчикам команд.
type SubscriptionRepository interface {
	// ListByChatID возвращает все подписки владельца в порядке создания.
	ListByChatID(ctx context.Context, chatID int64) ([]*models.Subscription, error)
	// CountByChatID возвращает число подписок владельца.
	CountByChatID(ctx context.Context, chatID int64) (int, error)
	// CreateSubscription сохраняет подписку и возвращает ее ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	// RemoveSubscription удаляет подписку по ID, возвращает число удаленных строк.
	RemoveSubscription(ctx context.Context, id string) (int, error)
}

// UserDirectory определяет операции над пользователями для
// административных команд.
type UserDirectory interface {
	FindByUniqueID(ctx context.Context, uniqueID string) (*models.User, error)
	UpdateRole(ctx context.Context, uniqueID, role string) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Mailer отправляет письмо-напоминание об истекающих подписках.
// Отправка синхронная, без повторов: ошибка сразу возвращается вызывающему.
type Mailer interface {
	SendExpiryReminder(ctx context.Context, to, username string, subs []*models.Subscription) error
}

// ReminderPublisher ставит задание на рассылку напоминания в очередь.
type ReminderPublisher interface {
	PublishReminder(job models.ReminderJob) error
}

// Окна "скоро истекает" в днях: /list использует короткое окно,
// /search, /stats и /sendreminder — недельное.
const (
	listSoonDays   = 3
	searchSoonDays = 7
)

var commandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "commands_processed_total",
	Help: "Number of processed bot commands by name and outcome.",
}, []string{"command", "success"})

type handlerFunc func(ctx context.Context, args []string, user *models.User) command.Response

// Service обрабатывает команды обоих фронтендов. Не хранит состояния
// между вызовами, кроме ссылок на внешние коллабораторы.
type Service struct {
	registry *command.Registry
	subs     SubscriptionRepository
	users    UserDirectory
	mailer   Mailer
	queue    ReminderPublisher
	plans    map[string]models.Plan
	log      *slog.Logger
	now      func() time.Time

	handlers map[string]handlerFunc
}

// New создает процессор команд и строит таблицу обработчиков.
func New(registry *command.Registry, subs SubscriptionRepository, users UserDirectory,
	mailer Mailer, queue ReminderPublisher, log *slog.Logger) *Service {
	s := &Service{
		registry: registry,
		subs:     subs,
		users:    users,
		mailer:   mailer,
		queue:    queue,
		plans:    models.Plans,
		log:      log,
		now:      time.Now,
	}
	s.handlers = map[string]handlerFunc{
		"start":          s.handleStart,
		"list":           s.handleList,
		"add":            s.handleAdd,
		"delete":         s.handleDelete,
		"search":         s.handleSearch,
		"sendreminder":   s.handleSendReminder,
		"upgrade":        s.handleUpgrade,
		"stats":          s.handleStats,
		"help":           s.handleHelp,
		"forcedreminder": s.handleForcedReminder,
		"promote":        s.handlePromote,
	}
	return s
}

// Execute обрабатывает одну команду: находит определение, проверяет
// роль, валидирует аргументы и вызывает обработчик. Все сбои, включая
// паники обработчиков, преобразуются в конверт с ошибкой — за границу
// Execute не выходит ни одна паника. Квота в /add проверяется до
// вставки без блокировки: одновременные /add одного пользователя могут
// кратковременно превысить квоту, это принятое ограничение.
func (s *Service) Execute(ctx context.Context, name string, args []string, user *models.User) (resp command.Response) {
	const op = "processor.Execute"
	log := s.log.With(slog.String("op", op), slog.String("command", name),
		slog.String("user", user.UniqueID))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("command handler panicked", slog.Any("panic", rec))
			resp = command.Fail(fmt.Sprintf("❌ **Error processing command:** %s",
				truncate(fmt.Sprint(rec), 100)))
		}
		commandsProcessed.WithLabelValues(name, strconv.FormatBool(resp.Success)).Inc()
	}()

	def, ok := s.registry.Get(name)
	if !ok {
		log.Info("unknown command")
		return command.Fail(fmt.Sprintf("❌ **Unknown command:** `%s`\n\nUse `/help` to see available commands.", name))
	}

	if !def.AllowsRole(user.Role) {
		log.Info("permission denied", slog.String("role", user.Role))
		return command.Fail(fmt.Sprintf("❌ **Permission denied**\n\nYour role `%s` cannot use `/%s`. Allowed roles: %s.",
			user.Role, def.Name, joinRoles(def.Roles)))
	}

	if err := s.registry.ValidateArgs(name, args); err != nil {
		log.Info("invalid arguments", slog.String("reason", err.Error()))
		return command.Fail(fmt.Sprintf("❌ **Invalid arguments:** %s\n\n**Usage:** `%s`\n%s\n\n**Examples:**\n%s",
			err.Error(), def.Usage(), def.HelpText, formatExamples(def.Examples)))
	}

	handler, ok := s.handlers[def.Name]
	if !ok {
		log.Error("command has no handler")
		return command.Fail(fmt.Sprintf("❌ Command handler not implemented: %s", def.Name))
	}

	return handler(ctx, args, user)
}

// truncate обрезает диагностику до limit символов, чтобы не утекали
// большие внутренние сообщения об ошибках.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func joinRoles(roles []string) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ", "
		}
		out += "`" + r + "`"
	}
	return out
}

func formatExamples(examples []string) string {
	out := ""
	for i, ex := range examples {
		if i > 0 {
			out += "\n"
		}
		out += "• `" + ex + "`"
	}
	return out
}

// formatQuota выводит квоту подписок, заменяя сигнальное значение словом.
func formatQuota(max int) string {
	if max == models.UnlimitedSubscriptions {
		return "unlimited"
	}
	return strconv.Itoa(max)
}
