// Package command реализует единую HTTP-точку входа для выполнения команд.
//
// Handler принимает JSON-запрос с текстом команды из любого источника
// (телеграм-бот или веб-дашборд), разрешает пользователя по идентификатору
// чата, разбирает строку команды и передает ее процессору. Ответ
// возвращается в едином конверте команды без изменений.
package command

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/http/response"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// Request — структура входных данных для выполнения команды.
type Request struct {
	ChatID   int64  `json:"chat_id" validate:"required"`
	Username string `json:"username"`
	Message  string `json:"message" validate:"required"`
	Source   string `json:"source" validate:"omitempty,oneof=telegram web"`
}

// Handler обрабатывает HTTP-запросы на выполнение команд.
type Handler struct {
	log      *slog.Logger
	identity Identity
	executor Executor
	validate *validator.Validate
}

// Identity описывает разрешение пользователя по идентификатору чата.
type Identity interface {
	ResolveByChatID(ctx context.Context, chatID int64, username string) (*models.User, error)
}

// Executor описывает интерфейс процессора команд.
type Executor interface {
	Execute(ctx context.Context, name string, args []string, user *models.User) command.Response
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, identity Identity, executor Executor) *Handler {
	return &Handler{
		log:      log,
		identity: identity,
		executor: executor,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выполнить команду
// @Description Разбирает текст команды и выполняет ее от имени пользователя чата. Возвращает конверт ответа команды.
// @Tags Commands
// @Accept  json
// @Produce  json
// @Param request body Request true "Команда и источник"
// @Success 200 {object} command.Response "Результат выполнения команды"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /command [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.command"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Int64("chat_id", req.ChatID), slog.String("source", req.Source))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.identity.ResolveByChatID(r.Context(), req.ChatID, req.Username)
	if err != nil {
		log.Error("failed to resolve user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve user"))
		return
	}

	name, args, ok := command.ParseLine(req.Message)
	if !ok {
		render.JSON(w, r, command.Fail("❌ **Commands must start with /**\n\nSend /help to see available commands."))
		return
	}

	resp := h.executor.Execute(r.Context(), name, args, user)
	log.Info("command executed",
		slog.String("command", name),
		slog.Bool("success", resp.Success))
	render.JSON(w, r, resp)
}
