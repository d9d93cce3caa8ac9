// Package ottreminder предоставляет маршруты основного сервиса.
package ottreminder

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/ott-reminder/internal/command"
	"github.com/magabrotheeeer/ott-reminder/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/ott-reminder/internal/http/handlers/auth/password"
	commandhandler "github.com/magabrotheeeer/ott-reminder/internal/http/handlers/command"
	"github.com/magabrotheeeer/ott-reminder/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/ott-reminder/internal/http/handlers/health"
	"github.com/magabrotheeeer/ott-reminder/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ott-reminder/internal/lib/jwt"
	identityservice "github.com/magabrotheeeer/ott-reminder/internal/services/identity"
	processorservice "github.com/magabrotheeeer/ott-reminder/internal/services/processor"
	"github.com/magabrotheeeer/ott-reminder/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, registry *command.Registry,
	identity *identityservice.Service, processor *processorservice.Service,
	db *repository.Storage, maker jwt.Maker) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/command", commandhandler.New(logger, identity, processor).ServeHTTP)
		r.Post("/login", login.New(logger, identity, maker).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/password", password.New(logger, identity).ServeHTTP)
			r.Get("/dashboard", dashboard.New(logger, identity, db, registry).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
