package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// Arg описывает один позиционный аргумент команды.
type Arg struct {
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
}

// Definition описывает команду: имя, аргументы, разрешенные роли,
// справку и примеры вызова. Определения неизменяемы после старта.
type Definition struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Args         []Arg    `json:"args"`
	Roles        []string `json:"permissions"`
	HelpText     string   `json:"help_text"`
	Examples     []string `json:"examples"`
	WebComponent string   `json:"web_ui_component"`
}

// RequiredCount возвращает число обязательных аргументов.
func (d *Definition) RequiredCount() int {
	n := 0
	for _, a := range d.Args {
		if !a.Optional {
			n++
		}
	}
	return n
}

// MaxArgs возвращает максимально допустимое число аргументов.
func (d *Definition) MaxArgs() int {
	return len(d.Args)
}

// AllowsRole проверяет строгое членство роли в списке разрешенных.
func (d *Definition) AllowsRole(role string) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Usage возвращает строку вызова команды вида /add username email ...
func (d *Definition) Usage() string {
	parts := []string{"/" + d.Name}
	for _, a := range d.Args {
		if a.Optional {
			parts = append(parts, "["+a.Name+"]")
		} else {
			parts = append(parts, a.Name)
		}
	}
	return strings.Join(parts, " ")
}

// ErrUnknownCommand возвращается при попытке обратиться к несуществующей команде.
var ErrUnknownCommand = errors.New("unknown command")

// MissingArgsError ошибка валидации: не хватает обязательных аргументов.
type MissingArgsError struct {
	Missing []string
}

func (e *MissingArgsError) Error() string {
	return fmt.Sprintf("missing required arguments: %s", strings.Join(e.Missing, ", "))
}

// TooManyArgsError ошибка валидации: аргументов больше максимума.
type TooManyArgsError struct {
	Max int
}

func (e *TooManyArgsError) Error() string {
	return fmt.Sprintf("too many arguments, maximum: %d", e.Max)
}

// Registry хранит определения команд с сохранением порядка объявления.
type Registry struct {
	order  []string
	byName map[string]*Definition
}

var allRoles = []string{models.RoleFree, models.RoleUser, models.RoleManager, models.RoleAdmin, models.RoleOwner}

// NewRegistry строит статическую таблицу команд. Таблица проверяется при
// построении: имена уникальны, обязательные аргументы не следуют за
// опциональными, список примеров непуст.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Definition)}

	r.mustRegister(&Definition{
		Name:         "start",
		Description:  "Welcome message and account information",
		Roles:        allRoles,
		HelpText:     "Shows welcome message and account details",
		Examples:     []string{"/start"},
		WebComponent: "dashboard_welcome",
	})
	r.mustRegister(&Definition{
		Name:         "list",
		Description:  "List all subscriptions with expiry status",
		Roles:        allRoles,
		HelpText:     "Display all your subscriptions with expiry dates and status",
		Examples:     []string{"/list"},
		WebComponent: "subscriptions_table",
	})
	r.mustRegister(&Definition{
		Name:        "add",
		Description: "Add new subscription",
		Args: []Arg{
			{Name: "username"}, {Name: "email"}, {Name: "service"}, {Name: "expiry"},
			{Name: "amount", Optional: true},
		},
		Roles:    allRoles,
		HelpText: "Add a new subscription with username, email, service, expiry date, and optional amount",
		Examples: []string{
			"/add john_netflix john@gmail.com Netflix 2025-12-31",
			"/add jane_spotify jane@gmail.com Spotify 2025-06-15 299",
		},
		WebComponent: "add_subscription_form",
	})
	r.mustRegister(&Definition{
		Name:         "delete",
		Description:  "Delete subscription by ID",
		Args:         []Arg{{Name: "subscription_id"}},
		Roles:        allRoles,
		HelpText:     "Delete a subscription using its ID (get ID from /list command)",
		Examples:     []string{"/delete abc12345", "/delete gRNNegwP"},
		WebComponent: "delete_button",
	})
	r.mustRegister(&Definition{
		Name:         "search",
		Description:  "Search subscriptions by keyword",
		Args:         []Arg{{Name: "keyword"}},
		Roles:        allRoles,
		HelpText:     "Search subscriptions by service name, username, or email",
		Examples:     []string{"/search Netflix", "/search john@gmail.com", "/search john_netflix"},
		WebComponent: "search_form",
	})
	r.mustRegister(&Definition{
		Name:         "sendreminder",
		Description:  "Send email reminders for expiring subscriptions",
		Roles:        []string{models.RoleUser, models.RoleManager, models.RoleAdmin, models.RoleOwner},
		HelpText:     "Send email notifications for subscriptions expiring in the next 7 days",
		Examples:     []string{"/sendreminder"},
		WebComponent: "reminder_button",
	})
	r.mustRegister(&Definition{
		Name:         "upgrade",
		Description:  "Upgrade subscription plan",
		Args:         []Arg{{Name: "plan_type", Optional: true}},
		Roles:        allRoles,
		HelpText:     "Upgrade to a higher plan or view available plans",
		Examples:     []string{"/upgrade", "/upgrade premium", "/upgrade yearly_unlimited"},
		WebComponent: "upgrade_form",
	})
	r.mustRegister(&Definition{
		Name:         "stats",
		Description:  "Show account statistics",
		Roles:        []string{models.RoleUser, models.RoleManager, models.RoleAdmin, models.RoleOwner},
		HelpText:     "Display account statistics including subscription count, expiring subscriptions, and plan details",
		Examples:     []string{"/stats"},
		WebComponent: "stats_dashboard",
	})
	r.mustRegister(&Definition{
		Name:         "help",
		Description:  "Show available commands and help",
		Args:         []Arg{{Name: "command", Optional: true}},
		Roles:        allRoles,
		HelpText:     "Show all available commands or detailed help for a specific command",
		Examples:     []string{"/help", "/help add", "/help search"},
		WebComponent: "help_modal",
	})
	r.mustRegister(&Definition{
		Name:         "forcedreminder",
		Description:  "Queue expiry reminders for all users (Admin only)",
		Roles:        []string{models.RoleAdmin, models.RoleOwner},
		HelpText:     "Queue reminder emails for every user; only subscriptions expiring within 3 days are mailed (Admin only)",
		Examples:     []string{"/forcedreminder"},
		WebComponent: "admin_reminder_button",
	})
	r.mustRegister(&Definition{
		Name:         "promote",
		Description:  "Promote user to manager role (Admin only)",
		Args:         []Arg{{Name: "user_id"}, {Name: "role"}},
		Roles:        []string{models.RoleAdmin, models.RoleOwner},
		HelpText:     "Promote a user to manager or admin role",
		Examples:     []string{"/promote FREE12345678 manager", "/promote USER87654321 admin"},
		WebComponent: "admin_user_management",
	})

	return r
}

func (r *Registry) mustRegister(d *Definition) {
	name := strings.ToLower(d.Name)
	if _, ok := r.byName[name]; ok {
		panic(fmt.Sprintf("command: duplicate definition %q", name))
	}
	if len(d.Examples) == 0 {
		panic(fmt.Sprintf("command: definition %q has no examples", name))
	}
	seenOptional := false
	for _, a := range d.Args {
		if a.Optional {
			seenOptional = true
		} else if seenOptional {
			panic(fmt.Sprintf("command: definition %q has required argument %q after optional one", name, a.Name))
		}
	}
	r.byName[name] = d
	r.order = append(r.order, name)
}

// Get возвращает определение команды по имени без учета регистра.
func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.byName[strings.ToLower(name)]
	return d, ok
}

// All возвращает все определения в порядке объявления.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// ForRole возвращает определения, доступные указанной роли, в порядке
// объявления.
func (r *Registry) ForRole(role string) []*Definition {
	var out []*Definition
	for _, name := range r.order {
		if d := r.byName[name]; d.AllowsRole(role) {
			out = append(out, d)
		}
	}
	return out
}

// ValidateArgs проверяет арность аргументов команды. Лишние аргументы
// отклоняются для всех команд, включая команды без аргументов: исходная
// логика молча игнорировала лишние токены у команд без аргументов, здесь
// политика выровнена в строгую сторону.
func (r *Registry) ValidateArgs(name string, args []string) error {
	d, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	required := d.RequiredCount()
	if len(args) < required {
		var missing []string
		for _, a := range d.Args[len(args):] {
			if !a.Optional {
				missing = append(missing, a.Name)
			}
		}
		return &MissingArgsError{Missing: missing}
	}
	if len(args) > d.MaxArgs() {
		return &TooManyArgsError{Max: d.MaxArgs()}
	}
	return nil
}
