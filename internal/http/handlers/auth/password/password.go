// Package password реализует HTTP-обработчик для установки пароля
// веб-дашборда. Обработчик доступен только авторизованным пользователям:
// публичный ID берется из контекста, установленного JWT middleware.
package password

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ott-reminder/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ott-reminder/internal/http/response"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
)

// Request — структура входных данных для смены пароля.
type Request struct {
	Password string `json:"password" validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы на установку пароля.
type Handler struct {
	log      *slog.Logger
	identity Service
	validate *validator.Validate
}

// Service описывает интерфейс установки пароля пользователя.
type Service interface {
	SetPassword(ctx context.Context, uniqueID, plain string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, identity Service) *Handler {
	return &Handler{
		log:      log,
		identity: identity,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Установить пароль дашборда
// @Description Задает пароль для входа в веб-дашборд текущего пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Новый пароль"
// @Success 200 {object} map[string]any "Пароль обновлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.password"

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

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uniqueID, ok := r.Context().Value(middlewarectx.UniqueID).(string)
	if !ok || uniqueID == "" {
		log.Error("unique id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.identity.SetPassword(r.Context(), uniqueID, req.Password); err != nil {
		log.Error("failed to set password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set password"))
		return
	}

	log.Info("password updated", slog.String("unique_id", uniqueID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"updated": true,
	}))
}
