// Package telegrambot реализует Telegram-фронтенд. Бот не содержит
// бизнес-логики: каждое сообщение, начинающееся с "/", пересылается в
// HTTP-точку входа команд, а текст ответа возвращается пользователю.
package telegrambot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/config"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
)

// App телеграм-бот, пересылающий команды в основной сервис.
type App struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
	apiURL string
	logger *slog.Logger
}

// commandRequest тело запроса к точке входа команд.
type commandRequest struct {
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
	Source   string `json:"source"`
}

// New создает бота и проверяет токен через getMe.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "telegrambot.New"
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("authorized on telegram account", slog.String("username", bot.Self.UserName))

	return &App{
		bot:    bot,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		apiURL: cfg.CommandAPIURL,
		logger: logger,
	}, nil
}

// Run запускает цикл длинного опроса и обрабатывает входящие сообщения
// до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := a.bot.GetUpdatesChan(u)

	a.logger.Info("telegram bot started")
	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			a.logger.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		}
	}
}

func (a *App) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	const op = "telegrambot.handleMessage"
	log := a.logger.With(slog.String("op", op), slog.Int64("chat_id", msg.Chat.ID))

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		a.reply(msg.Chat.ID, "Send a command starting with / or use /help to see what I can do.")
		return
	}

	resp, err := a.forwardCommand(ctx, msg.Chat.ID, msg.From.UserName, text)
	if err != nil {
		log.Error("failed to forward command", sl.Err(err))
		a.reply(msg.Chat.ID, "❌ Service is temporarily unavailable, please try again later.")
		return
	}

	log.Info("command forwarded", slog.Bool("success", resp.Success))
	a.reply(msg.Chat.ID, resp.Message)
}

// forwardCommand пересылает текст команды в основной сервис и разбирает
// конверт ответа.
func (a *App) forwardCommand(ctx context.Context, chatID int64, username, text string) (*command.Response, error) {
	body, err := json.Marshal(commandRequest{
		ChatID:   chatID,
		Username: username,
		Message:  text,
		Source:   "telegram",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL+"/api/v1/command", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			a.logger.Error("failed to close response body", sl.Err(closeErr))
		}
	}()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", httpResp.StatusCode)
	}

	var resp command.Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

func (a *App) reply(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := a.bot.Send(out); err != nil {
		// Markdown в тексте ответа может быть невалидным для Telegram,
		// в этом случае отправляем как обычный текст.
		plain := tgbotapi.NewMessage(chatID, text)
		if _, plainErr := a.bot.Send(plain); plainErr != nil {
			a.logger.Error("failed to send telegram message", sl.Err(plainErr))
		}
	}
}
