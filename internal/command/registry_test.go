package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		lookup  string
		wantOK  bool
		wantCmd string
	}{
		{name: "точное имя", lookup: "add", wantOK: true, wantCmd: "add"},
		{name: "верхний регистр", lookup: "ADD", wantOK: true, wantCmd: "add"},
		{name: "смешанный регистр", lookup: "SendReminder", wantOK: true, wantCmd: "sendreminder"},
		{name: "неизвестная команда", lookup: "export", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := r.Get(tt.lookup)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantCmd, def.Name)
			}
		})
	}
}

func TestRegistryDefinitionsComplete(t *testing.T) {
	r := NewRegistry()

	all := r.All()
	require.Len(t, all, 11)

	names := make([]string, 0, len(all))
	for _, def := range all {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description, "command %s has no description", def.Name)
		assert.NotEmpty(t, def.Roles, "command %s has no roles", def.Name)
		assert.NotEmpty(t, def.Examples, "command %s has no examples", def.Name)
	}
	// Порядок объявления сохраняется.
	assert.Equal(t, []string{
		"start", "list", "add", "delete", "search", "sendreminder",
		"upgrade", "stats", "help", "forcedreminder", "promote",
	}, names)
}

func TestRegistryForRole(t *testing.T) {
	r := NewRegistry()

	collect := func(defs []*Definition) []string {
		names := make([]string, 0, len(defs))
		for _, def := range defs {
			names = append(names, def.Name)
		}
		return names
	}

	tests := []struct {
		name string
		role string
		want []string
	}{
		{
			name: "роль free не видит команд платных ролей и администраторов",
			role: models.RoleFree,
			want: []string{"start", "list", "add", "delete", "search", "upgrade", "help"},
		},
		{
			name: "роль user получает рассылку и статистику",
			role: models.RoleUser,
			want: []string{"start", "list", "add", "delete", "search", "sendreminder", "upgrade", "stats", "help"},
		},
		{
			name: "роль admin видит все команды",
			role: models.RoleAdmin,
			want: []string{
				"start", "list", "add", "delete", "search", "sendreminder",
				"upgrade", "stats", "help", "forcedreminder", "promote",
			},
		},
		{
			name: "неизвестная роль не видит ничего",
			role: "superhero",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(r.ForRole(tt.role))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryAllowsRoleStrictMembership(t *testing.T) {
	r := NewRegistry()

	def, ok := r.Get("forcedreminder")
	require.True(t, ok)

	// Иерархия ролей не подразумевается: manager выше user, но
	// доступа к административным командам не имеет.
	assert.False(t, def.AllowsRole(models.RoleManager))
	assert.True(t, def.AllowsRole(models.RoleAdmin))
	assert.True(t, def.AllowsRole(models.RoleOwner))
}

func TestRegistryValidateArgs(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		command string
		args    []string
		wantErr string
	}{
		{
			name:    "точное число обязательных аргументов",
			command: "add",
			args:    []string{"john", "john@gmail.com", "Netflix", "2025-12-31"},
		},
		{
			name:    "обязательные плюс опциональный",
			command: "add",
			args:    []string{"john", "john@gmail.com", "Netflix", "2025-12-31", "299"},
		},
		{
			name:    "не хватает аргументов",
			command: "add",
			args:    []string{"john", "john@gmail.com"},
			wantErr: "missing required arguments: service, expiry",
		},
		{
			name:    "слишком много аргументов",
			command: "delete",
			args:    []string{"abc12345", "extra"},
			wantErr: "too many arguments, maximum: 1",
		},
		{
			name:    "лишние аргументы у команды без аргументов",
			command: "list",
			args:    []string{"everything"},
			wantErr: "too many arguments, maximum: 0",
		},
		{
			name:    "опциональный аргумент можно опустить",
			command: "help",
			args:    []string{},
		},
		{
			name:    "неизвестная команда",
			command: "export",
			args:    []string{},
			wantErr: "unknown command: export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.ValidateArgs(tt.command, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestDefinitionUsage(t *testing.T) {
	r := NewRegistry()

	def, ok := r.Get("add")
	require.True(t, ok)
	assert.Equal(t, "/add username email service expiry [amount]", def.Usage())

	def, ok = r.Get("list")
	require.True(t, ok)
	assert.Equal(t, "/list", def.Usage())
}

func TestForcedReminderHelpMatchesBehaviour(t *testing.T) {
	r := NewRegistry()

	def, ok := r.Get("forcedreminder")
	require.True(t, ok)
	// Рассыльщик шлет письма только по подпискам, истекающим в ближайшие
	// 3 дня, поэтому справка не должна обещать рассылку всем без разбора.
	assert.Contains(t, def.HelpText, "3 days")
	assert.NotContains(t, def.HelpText, "regardless")
}
