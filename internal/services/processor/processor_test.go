package processor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// MockSubscriptionRepository реализует интерфейс SubscriptionRepository.
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) ListByChatID(ctx context.Context, chatID int64) ([]*models.Subscription, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) CountByChatID(ctx context.Context, chatID int64) (int, error) {
	args := m.Called(ctx, chatID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionRepository) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func (m *MockSubscriptionRepository) RemoveSubscription(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockUserDirectory реализует интерфейс UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByUniqueID(ctx context.Context, uniqueID string) (*models.User, error) {
	args := m.Called(ctx, uniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDirectory) UpdateRole(ctx context.Context, uniqueID, role string) error {
	args := m.Called(ctx, uniqueID, role)
	return args.Error(0)
}

func (m *MockUserDirectory) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockMailer реализует интерфейс Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendExpiryReminder(ctx context.Context, to, username string, subs []*models.Subscription) error {
	args := m.Called(ctx, to, username, subs)
	return args.Error(0)
}

// MockReminderPublisher реализует интерфейс ReminderPublisher.
type MockReminderPublisher struct {
	mock.Mock
}

func (m *MockReminderPublisher) PublishReminder(job models.ReminderJob) error {
	args := m.Called(job)
	return args.Error(0)
}

// testToday фиксированная дата "сегодня" для всех тестов процессора.
var testToday = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestService(subs *MockSubscriptionRepository, users *MockUserDirectory,
	mailer *MockMailer, queue *MockReminderPublisher) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := New(command.NewRegistry(), subs, users, mailer, queue, logger)
	s.now = func() time.Time { return testToday }
	return s
}

func freeUser() *models.User {
	return &models.User{
		UID:              "3f0e2f61-1f9e-4a34-8f0a-02a2e9a3ec55",
		UniqueID:         "FREE12345678",
		TelegramChatID:   42,
		TelegramUsername: "john",
		PlanType:         models.PlanFree,
		Role:             models.RoleFree,
		MaxSubscriptions: 5,
		IsActive:         true,
	}
}

func adminUser() *models.User {
	u := freeUser()
	u.Role = models.RoleAdmin
	return u
}

func subOn(id, service string, date time.Time) *models.Subscription {
	return &models.Subscription{
		ID:             id,
		TelegramChatID: 42,
		ServiceName:    service,
		Username:       "john_" + service,
		Email:          "john@gmail.com",
		ExpiryDate:     date,
		AmountReceived: "299",
	}
}

func TestExecuteDispatch(t *testing.T) {
	tests := []struct {
		name        string
		commandName string
		args        []string
		user        *models.User
		wantSuccess bool
		wantContain string
	}{
		{
			name:        "неизвестная команда",
			commandName: "export",
			user:        freeUser(),
			wantSuccess: false,
			wantContain: "❌ **Unknown command:** `export`",
		},
		{
			name:        "роль free не может вызвать stats",
			commandName: "stats",
			user:        freeUser(),
			wantSuccess: false,
			wantContain: "Your role `free` cannot use `/stats`",
		},
		{
			name:        "не хватает аргументов add",
			commandName: "add",
			args:        []string{"john"},
			user:        freeUser(),
			wantSuccess: false,
			wantContain: "**Usage:** `/add username email service expiry [amount]`",
		},
		{
			name:        "лишние аргументы у list",
			commandName: "list",
			args:        []string{"everything"},
			user:        freeUser(),
			wantSuccess: false,
			wantContain: "too many arguments, maximum: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(new(MockSubscriptionRepository), new(MockUserDirectory),
				new(MockMailer), new(MockReminderPublisher))
			resp := s.Execute(context.Background(), tt.commandName, tt.args, tt.user)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Contains(t, resp.Message, tt.wantContain)
			assert.Equal(t, command.FormatMarkdown, resp.FormatMode)
		})
	}
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	repo := new(MockSubscriptionRepository)
	repo.On("ListByChatID", mock.Anything, int64(42)).
		Run(func(_ mock.Arguments) { panic("subscription storage corrupted beyond repair") }).
		Return(nil, nil)

	s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
	resp := s.Execute(context.Background(), "list", nil, freeUser())

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "❌ **Error processing command:**")
	assert.Contains(t, resp.Message, "subscription storage corrupted")
}

func TestHandleStart(t *testing.T) {
	s := newTestService(new(MockSubscriptionRepository), new(MockUserDirectory),
		new(MockMailer), new(MockReminderPublisher))

	resp := s.Execute(context.Background(), "start", nil, freeUser())

	require.True(t, resp.Success)
	assert.Contains(t, resp.Message, "FREE12345678")
	assert.Contains(t, resp.Message, "Free Plan")
	assert.Contains(t, resp.Message, "Limit: 5 subscriptions")
	assert.Equal(t, "/dashboard", resp.WebRedirect)
}

func TestHandleList(t *testing.T) {
	tests := []struct {
		name        string
		subs        []*models.Subscription
		wantContain []string
	}{
		{
			name:        "пустое хранилище",
			subs:        []*models.Subscription{},
			wantContain: []string{"📋 **No Subscriptions Found**"},
		},
		{
			name: "границы окна в три дня",
			subs: []*models.Subscription{
				subOn("aaaa1111-0000-0000-0000-000000000000", "Netflix", testToday.AddDate(0, 0, 3)),
				subOn("bbbb2222-0000-0000-0000-000000000000", "Spotify", testToday.AddDate(0, 0, 4)),
				subOn("cccc3333-0000-0000-0000-000000000000", "Hotstar", testToday.AddDate(0, 0, -1)),
			},
			wantContain: []string{
				"**1. Netflix** 🟡 EXPIRING SOON",
				"**2. Spotify** ✅ ACTIVE",
				"**3. Hotstar** 🔴 EXPIRED",
				"🆔 ID: `aaaa1111`",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSubscriptionRepository)
			repo.On("ListByChatID", mock.Anything, int64(42)).Return(tt.subs, nil)

			s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
			resp := s.Execute(context.Background(), "list", nil, freeUser())

			require.True(t, resp.Success)
			for _, want := range tt.wantContain {
				assert.Contains(t, resp.Message, want)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestHandleAdd(t *testing.T) {
	validArgs := []string{"john_netflix", "john@gmail.com", "Netflix", "2025-12-31"}

	tests := []struct {
		name        string
		args        []string
		user        *models.User
		setupMock   func(*MockSubscriptionRepository)
		wantSuccess bool
		wantContain string
	}{
		{
			name:        "почта без собаки",
			args:        []string{"john", "gmail.com", "Netflix", "2025-12-31"},
			user:        freeUser(),
			setupMock:   func(_ *MockSubscriptionRepository) {},
			wantSuccess: false,
			wantContain: "❌ **Invalid email:** `gmail.com`",
		},
		{
			name:        "почта без точки",
			args:        []string{"john", "john@gmail", "Netflix", "2025-12-31"},
			user:        freeUser(),
			setupMock:   func(_ *MockSubscriptionRepository) {},
			wantSuccess: false,
			wantContain: "❌ **Invalid email:** `john@gmail`",
		},
		{
			name:        "неверный формат даты",
			args:        []string{"john", "john@gmail.com", "Netflix", "31-12-2025"},
			user:        freeUser(),
			setupMock:   func(_ *MockSubscriptionRepository) {},
			wantSuccess: false,
			wantContain: "❌ **Invalid date format!** Use YYYY-MM-DD",
		},
		{
			name:        "дата в прошлом",
			args:        []string{"john", "john@gmail.com", "Netflix", "2025-06-09"},
			user:        freeUser(),
			setupMock:   func(_ *MockSubscriptionRepository) {},
			wantSuccess: false,
			wantContain: "is in the past",
		},
		{
			name: "квота исчерпана",
			args: validArgs,
			user: freeUser(),
			setupMock: func(m *MockSubscriptionRepository) {
				m.On("CountByChatID", mock.Anything, int64(42)).Return(5, nil)
			},
			wantSuccess: false,
			wantContain: "❌ **Subscription limit reached!**",
		},
		{
			name: "успешное добавление",
			args: []string{"john_netflix", "john@gmail.com", "Netflix", "2025-12-31", "299"},
			user: freeUser(),
			setupMock: func(m *MockSubscriptionRepository) {
				m.On("CountByChatID", mock.Anything, int64(42)).Return(2, nil)
				m.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.ServiceName == "Netflix" && sub.AmountReceived == "299" &&
						sub.ExpiryDate.Format(models.DateLayout) == "2025-12-31"
				})).Return("dddd4444-0000-0000-0000-000000000000", nil)
			},
			wantSuccess: true,
			wantContain: "✅ **Subscription Added!**",
		},
		{
			name: "сумма по умолчанию ноль",
			args: validArgs,
			user: freeUser(),
			setupMock: func(m *MockSubscriptionRepository) {
				m.On("CountByChatID", mock.Anything, int64(42)).Return(0, nil)
				m.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.AmountReceived == "0"
				})).Return("eeee5555-0000-0000-0000-000000000000", nil)
			},
			wantSuccess: true,
			wantContain: "💰 Amount: ₹0",
		},
		{
			name: "дата сегодня допустима",
			args: []string{"john", "john@gmail.com", "Netflix", "2025-06-10"},
			user: freeUser(),
			setupMock: func(m *MockSubscriptionRepository) {
				m.On("CountByChatID", mock.Anything, int64(42)).Return(0, nil)
				m.On("CreateSubscription", mock.Anything, mock.Anything).
					Return("ffff6666-0000-0000-0000-000000000000", nil)
			},
			wantSuccess: true,
			wantContain: "✅ **Subscription Added!**",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSubscriptionRepository)
			tt.setupMock(repo)

			s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
			resp := s.Execute(context.Background(), "add", tt.args, tt.user)

			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Contains(t, resp.Message, tt.wantContain)
			repo.AssertExpectations(t)
		})
	}
}

func TestHandleAddUnlimitedSkipsQuotaCheck(t *testing.T) {
	user := freeUser()
	user.PlanType = models.PlanYearlyUnlimited
	user.MaxSubscriptions = models.UnlimitedSubscriptions

	repo := new(MockSubscriptionRepository)
	repo.On("CreateSubscription", mock.Anything, mock.Anything).
		Return("aaaa7777-0000-0000-0000-000000000000", nil)

	s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
	resp := s.Execute(context.Background(), "add",
		[]string{"john", "john@gmail.com", "Netflix", "2025-12-31"}, user)

	require.True(t, resp.Success)
	repo.AssertNotCalled(t, "CountByChatID", mock.Anything, mock.Anything)
}

func TestHandleDelete(t *testing.T) {
	stored := []*models.Subscription{
		subOn("aaaa1111-0000-0000-0000-000000000001", "Netflix", testToday.AddDate(0, 0, 30)),
		subOn("bbbb2222-0000-0000-0000-000000000002", "Spotify", testToday.AddDate(0, 0, 30)),
		subOn("cccc3333-0000-0000-0000-000000000003", "Hotstar", testToday.AddDate(0, 0, 30)),
		subOn("dddd4444-0000-0000-0000-000000000004", "Prime", testToday.AddDate(0, 0, 30)),
	}

	t.Run("удаление по префиксу", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		repo.On("ListByChatID", mock.Anything, int64(42)).Return(stored, nil)
		repo.On("RemoveSubscription", mock.Anything, "bbbb2222-0000-0000-0000-000000000002").Return(1, nil)

		s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
		resp := s.Execute(context.Background(), "delete", []string{"bbbb2222"}, freeUser())

		require.True(t, resp.Success)
		assert.Contains(t, resp.Message, "✅ **Successfully Deleted!**")
		assert.Contains(t, resp.Message, "Spotify")
		repo.AssertExpectations(t)
	})

	t.Run("не найдено, подсказки ограничены тремя", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		repo.On("ListByChatID", mock.Anything, int64(42)).Return(stored, nil)

		s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
		resp := s.Execute(context.Background(), "delete", []string{"zzzz9999"}, freeUser())

		require.False(t, resp.Success)
		assert.Contains(t, resp.Message, "❌ **Subscription not found!**")
		assert.Contains(t, resp.Message, "• `aaaa1111` — Netflix")
		assert.Contains(t, resp.Message, "• `cccc3333` — Hotstar")
		assert.NotContains(t, resp.Message, "Prime")
		repo.AssertNotCalled(t, "RemoveSubscription", mock.Anything, mock.Anything)
	})

	t.Run("не найдено при пустом хранилище", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		repo.On("ListByChatID", mock.Anything, int64(42)).Return([]*models.Subscription{}, nil)

		s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
		resp := s.Execute(context.Background(), "delete", []string{"abcd1234"}, freeUser())

		require.False(t, resp.Success)
		assert.Contains(t, resp.Message, "• No subscriptions found")
	})
}

func TestHandleSearch(t *testing.T) {
	stored := []*models.Subscription{
		subOn("aaaa1111-0000-0000-0000-000000000001", "Netflix", testToday.AddDate(0, 0, 30)),
		subOn("bbbb2222-0000-0000-0000-000000000002", "Spotify", testToday.AddDate(0, 0, 30)),
	}

	tests := []struct {
		name        string
		keyword     string
		subs        []*models.Subscription
		wantContain string
		wantMiss    string
	}{
		{
			name:        "поиск без учета регистра",
			keyword:     "NETFLIX",
			subs:        stored,
			wantContain: "**1. Netflix**",
			wantMiss:    "Spotify",
		},
		{
			name:        "совпадение по почте",
			keyword:     "john@gmail.com",
			subs:        stored,
			wantContain: "🔍 **Search Results for**",
		},
		{
			name:        "нет совпадений",
			keyword:     "hulu",
			subs:        stored,
			wantContain: "🔍 **No subscriptions found** for `hulu`",
		},
		{
			name:        "пустое хранилище",
			keyword:     "netflix",
			subs:        []*models.Subscription{},
			wantContain: "📋 **No subscriptions found**\n\nAdd subscriptions first using `/add`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSubscriptionRepository)
			repo.On("ListByChatID", mock.Anything, int64(42)).Return(tt.subs, nil)

			s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
			resp := s.Execute(context.Background(), "search", []string{tt.keyword}, freeUser())

			require.True(t, resp.Success)
			assert.Contains(t, resp.Message, tt.wantContain)
			if tt.wantMiss != "" {
				assert.NotContains(t, resp.Message, tt.wantMiss)
			}
		})
	}
}

func TestHandleStats(t *testing.T) {
	user := freeUser()
	user.Role = models.RoleUser

	subs := []*models.Subscription{
		subOn("aaaa1111-0000-0000-0000-000000000001", "Netflix", testToday.AddDate(0, 0, 30)),
		subOn("bbbb2222-0000-0000-0000-000000000002", "Spotify", testToday.AddDate(0, 0, 2)),
		subOn("cccc3333-0000-0000-0000-000000000003", "Hotstar", testToday.AddDate(0, 0, -5)),
	}
	subs[0].AmountReceived = "100"
	subs[1].AmountReceived = "bad"
	subs[2].AmountReceived = "50"

	repo := new(MockSubscriptionRepository)
	repo.On("ListByChatID", mock.Anything, int64(42)).Return(subs, nil)

	s := newTestService(repo, new(MockUserDirectory), new(MockMailer), new(MockReminderPublisher))
	resp := s.Execute(context.Background(), "stats", nil, user)

	require.True(t, resp.Success)
	assert.Contains(t, resp.Message, "📈 Total: 3/5")
	assert.Contains(t, resp.Message, "✅ Active: 1")
	assert.Contains(t, resp.Message, "🟡 Expiring (≤7 days): 1")
	assert.Contains(t, resp.Message, "🔴 Expired: 1")
	// Нечисловая сумма пропущена: 100 + 50.
	assert.Contains(t, resp.Message, "💰 Total amount: ₹150.00")
}

func TestHandleSendReminder(t *testing.T) {
	user := freeUser()
	user.Role = models.RoleUser

	t.Run("нет истекающих подписок", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		repo.On("ListByChatID", mock.Anything, int64(42)).Return([]*models.Subscription{
			subOn("aaaa1111-0000-0000-0000-000000000001", "Netflix", testToday.AddDate(0, 0, 30)),
		}, nil)
		mailer := new(MockMailer)

		s := newTestService(repo, new(MockUserDirectory), mailer, new(MockReminderPublisher))
		resp := s.Execute(context.Background(), "sendreminder", nil, user)

		require.True(t, resp.Success)
		assert.Contains(t, resp.Message, "✅ **No subscriptions expiring**")
		mailer.AssertNotCalled(t, "SendExpiryReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("письмо уходит на адрес первой истекающей", func(t *testing.T) {
		expiring := subOn("bbbb2222-0000-0000-0000-000000000002", "Spotify", testToday.AddDate(0, 0, 7))
		expiring.Email = "first@gmail.com"

		repo := new(MockSubscriptionRepository)
		repo.On("ListByChatID", mock.Anything, int64(42)).Return([]*models.Subscription{
			subOn("aaaa1111-0000-0000-0000-000000000001", "Netflix", testToday.AddDate(0, 0, -10)),
			expiring,
		}, nil)

		mailer := new(MockMailer)
		mailer.On("SendExpiryReminder", mock.Anything, "first@gmail.com", "john",
			[]*models.Subscription{expiring}).Return(nil)

		s := newTestService(repo, new(MockUserDirectory), mailer, new(MockReminderPublisher))
		resp := s.Execute(context.Background(), "sendreminder", nil, user)

		require.True(t, resp.Success)
		assert.Contains(t, resp.Message, "1 expiring subscription(s)")
		mailer.AssertExpectations(t)
	})

	t.Run("ошибка почты возвращается пользователю", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		repo.On("ListByChatID", mock.Anything, int64(42)).Return([]*models.Subscription{
			subOn("aaaa1111-0000-0000-0000-000000000001", "Netflix", testToday),
		}, nil)
		mailer := new(MockMailer)
		mailer.On("SendExpiryReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("smtp connection refused"))

		s := newTestService(repo, new(MockUserDirectory), mailer, new(MockReminderPublisher))
		resp := s.Execute(context.Background(), "sendreminder", nil, user)

		require.False(t, resp.Success)
		assert.Contains(t, resp.Message, "❌ **Reminder Error:** smtp connection refused")
	})
}

func TestHandleUpgrade(t *testing.T) {
	s := newTestService(new(MockSubscriptionRepository), new(MockUserDirectory),
		new(MockMailer), new(MockReminderPublisher))

	t.Run("список тарифов с отметкой текущего", func(t *testing.T) {
		resp := s.Execute(context.Background(), "upgrade", nil, freeUser())

		require.True(t, resp.Success)
		assert.Contains(t, resp.Message, "**Free Plan (Current)** ✅")
		assert.Contains(t, resp.Message, "**Yearly Unlimited**")
		assert.Equal(t, "/upgrade", resp.WebRedirect)
	})

	t.Run("детали конкретного тарифа", func(t *testing.T) {
		resp := s.Execute(context.Background(), "upgrade", []string{"premium"}, freeUser())

		require.True(t, resp.Success)
		assert.Contains(t, resp.Message, "💎 **Premium Plan**")
		assert.Contains(t, resp.Message, "₹599/month")
	})

	t.Run("несуществующий тариф", func(t *testing.T) {
		resp := s.Execute(context.Background(), "upgrade", []string{"platinum"}, freeUser())

		require.False(t, resp.Success)
		assert.Contains(t, resp.Message, "❌ **Invalid plan:** `platinum`")
		assert.Contains(t, resp.Message, "yearly_unlimited")
	})
}

func TestHandleForcedReminder(t *testing.T) {
	users := []*models.User{
		{UniqueID: "FREE11111111", TelegramChatID: 1, TelegramUsername: "alice"},
		{UniqueID: "FREE22222222", TelegramChatID: 2, TelegramUsername: "bob"},
		{UniqueID: "FREE33333333", TelegramChatID: 3, TelegramUsername: "carol"},
	}

	dir := new(MockUserDirectory)
	dir.On("ListUsers", mock.Anything).Return(users, nil)

	queue := new(MockReminderPublisher)
	queue.On("PublishReminder", models.ReminderJob{TelegramChatID: 1, TelegramUsername: "alice"}).Return(nil)
	queue.On("PublishReminder", models.ReminderJob{TelegramChatID: 2, TelegramUsername: "bob"}).
		Return(errors.New("channel closed"))
	queue.On("PublishReminder", models.ReminderJob{TelegramChatID: 3, TelegramUsername: "carol"}).Return(nil)

	s := newTestService(new(MockSubscriptionRepository), dir, new(MockMailer), queue)
	resp := s.Execute(context.Background(), "forcedreminder", nil, adminUser())

	require.True(t, resp.Success)
	assert.Contains(t, resp.Message, "✅ **Forced reminders queued** for 2 of 3 user(s).")
	queue.AssertExpectations(t)
}

func TestHandlePromote(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		setupMock   func(*MockUserDirectory)
		wantSuccess bool
		wantContain string
	}{
		{
			name:        "недопустимая роль",
			args:        []string{"FREE11111111", "owner"},
			setupMock:   func(_ *MockUserDirectory) {},
			wantSuccess: false,
			wantContain: "❌ **Invalid role:** `owner`",
		},
		{
			name: "пользователь не найден",
			args: []string{"FREE99999999", "manager"},
			setupMock: func(m *MockUserDirectory) {
				m.On("FindByUniqueID", mock.Anything, "FREE99999999").
					Return(nil, errors.New("user not found"))
			},
			wantSuccess: false,
			wantContain: "❌ **User not found:** `FREE99999999`",
		},
		{
			name: "успешное повышение до manager",
			args: []string{"FREE11111111", "manager"},
			setupMock: func(m *MockUserDirectory) {
				m.On("FindByUniqueID", mock.Anything, "FREE11111111").
					Return(&models.User{UniqueID: "FREE11111111", Role: models.RoleFree}, nil)
				m.On("UpdateRole", mock.Anything, "FREE11111111", "manager").Return(nil)
			},
			wantSuccess: true,
			wantContain: "✅ **User promoted!**",
		},
		{
			name: "регистр роли не важен",
			args: []string{"FREE11111111", "ADMIN"},
			setupMock: func(m *MockUserDirectory) {
				m.On("FindByUniqueID", mock.Anything, "FREE11111111").
					Return(&models.User{UniqueID: "FREE11111111", Role: models.RoleFree}, nil)
				m.On("UpdateRole", mock.Anything, "FREE11111111", "admin").Return(nil)
			},
			wantSuccess: true,
			wantContain: "🎭 New role: admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := new(MockUserDirectory)
			tt.setupMock(dir)

			s := newTestService(new(MockSubscriptionRepository), dir, new(MockMailer), new(MockReminderPublisher))
			resp := s.Execute(context.Background(), "promote", tt.args, adminUser())

			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Contains(t, resp.Message, tt.wantContain)
			dir.AssertExpectations(t)
		})
	}
}
