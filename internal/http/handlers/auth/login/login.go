// Package login реализует HTTP-обработчик для входа в веб-дашборд.
//
// Пользователь входит по своему публичному ID, полученному от бота.
// Если для аккаунта задан пароль, он обязателен; иначе достаточно ID.
// При успешной аутентификации возвращается JSON с JWT токеном.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ott-reminder/internal/http/response"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/jwt"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/ott-reminder/internal/models"
	"github.com/magabrotheeeer/ott-reminder/internal/storage/repository"
)

// Request — структура входных данных для авторизации.
type Request struct {
	UniqueID string `json:"unique_id" validate:"required,alphanum,min=8"`
	Password string `json:"password"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger
	identity Service
	maker    jwt.Maker
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	FindByUniqueID(ctx context.Context, uniqueID string) (*models.User, error)
	CheckPassword(user *models.User, plain string) error
}

// New создает новый экземпляр Handler с указанными логгером, сервисом
// пользователей и генератором токенов.
func New(log *slog.Logger, identity Service, maker jwt.Maker) *Handler {
	return &Handler{
		log:      log,
		identity: identity,
		maker:    maker,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход в веб-дашборд
// @Description Аутентифицирует пользователя по публичному ID и необязательному паролю. Возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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
	log.Info("request body decoded", slog.String("unique_id", req.UniqueID))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.identity.FindByUniqueID(r.Context(), req.UniqueID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", slog.String("unique_id", req.UniqueID))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid credentials"))
			return
		}
		log.Error("failed to find user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	if err := h.identity.CheckPassword(user, req.Password); err != nil {
		log.Error("password check failed", slog.String("unique_id", req.UniqueID))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	token, err := h.maker.GenerateToken(user.UniqueID, user.Role)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("unique_id", user.UniqueID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":     token,
		"unique_id": user.UniqueID,
		"role":      user.Role,
	}))
}
