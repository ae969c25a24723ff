package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hernanharco/authcenter-backend/internal/application"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

// Config is the immutable HTTP surface configuration built at startup.
type Config struct {
	APIPrefix   string
	CORSOrigins []string
	Cookie      CookiePolicy
	// ExposeErrorDetail lets OAuth failures carry provider detail.
	// It must stay false in production.
	ExposeErrorDetail bool
	// Readiness reports whether backing stores are reachable.
	Readiness func(ctx context.Context) error
}

// Handler is the HTTP adapter entrypoint for account and auth use-cases.
type Handler struct {
	service    *application.Service
	cfg        Config
	extractors []TokenExtractor
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, cfg Config) *Handler {
	if cfg.Cookie.Name == "" {
		cfg.Cookie = NewCookiePolicy(false)
	}
	return &Handler{
		service:    service,
		cfg:        cfg,
		extractors: []TokenExtractor{CookieExtractor(cfg.Cookie.Name), BearerExtractor},
	}
}

// NewRouter registers routes and the middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   handler.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	r.Get("/swagger/", handler.swaggerUI)
	r.Get("/swagger/openapi.yaml", handler.swaggerSpec)

	api := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", handler.login)
			r.Post("/login-form", handler.loginForm)
			r.Post("/google", handler.googleLogin)
			r.Post("/logout", handler.logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(handler.authMiddleware)

			r.With(handler.requireRole(domain.RoleAdmin, domain.RoleManager)).Get("/", handler.listUsers)
			r.With(handler.requireRole(domain.RoleAdmin)).Post("/", handler.createUser)
			r.Get("/me", handler.me)
			r.Get("/me/login-history", handler.myLoginHistory)
			r.Get("/{id}", handler.getUser)
			r.Put("/{id}", handler.updateUser)
			r.With(handler.requireRole(domain.RoleAdmin)).Delete("/{id}", handler.deleteUser)
			r.With(handler.requireRole(domain.RoleAdmin)).Put("/{id}/password", handler.setUserPassword)
		})
	}

	prefix := strings.TrimRight(strings.TrimSpace(handler.cfg.APIPrefix), "/")
	if prefix == "" {
		r.Group(api)
	} else {
		r.Route(prefix, api)
	}
	return r
}
