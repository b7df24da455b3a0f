package rest

import (
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frahmantamala/epic-events-crm/internal/audit"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/client"
	"github.com/frahmantamala/epic-events-crm/internal/contract"
	"github.com/frahmantamala/epic-events-crm/internal/event"
	"github.com/frahmantamala/epic-events-crm/internal/report"
	"github.com/frahmantamala/epic-events-crm/internal/transport/middleware"
	"github.com/frahmantamala/epic-events-crm/internal/transport/swagger"
	"github.com/frahmantamala/epic-events-crm/internal/user"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Client   *client.Handler
	Contract *contract.Handler
	Event    *event.Handler
	Report   *report.Handler
	Audit    *audit.Handler
}

type RouterOptions struct {
	AllowedOrigins []string
	LoginLimiter   *middleware.IPRateLimiter
	OpenAPI        *openapi3.T
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Source("http"))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.Metrics)
	router.Use(chiMiddleware.StripSlashes)

	router.Handle("/metrics", promhttp.Handler())
	if opts.OpenAPI != nil {
		router.Get(swagger.DocumentURL, OpenAPIHandler(opts.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Group(func(lr chi.Router) {
			if opts.LoginLimiter != nil {
				lr.Use(opts.LoginLimiter.Middleware)
			}
			lr.Post("/auth/login", h.Auth.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/me", h.Auth.Me)
			pr.Post("/auth/logout", h.Auth.Logout)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.List)
				ur.Post("/", h.User.Create)
				ur.Get("/{id}", h.User.Get)
				ur.Put("/{id}", h.User.Update)
				ur.Delete("/{id}", h.User.Delete)
				ur.Put("/{id}/role", h.User.ChangeRole)
			})

			pr.Route("/clients", func(cr chi.Router) {
				cr.Get("/", h.Client.List)
				cr.Post("/", h.Client.Create)
				cr.Get("/{id}", h.Client.Get)
				cr.Put("/{id}", h.Client.Update)
				cr.Delete("/{id}", h.Client.Delete)
			})

			pr.Route("/contracts", func(cr chi.Router) {
				cr.Get("/", h.Contract.List)
				cr.Post("/", h.Contract.Create)
				cr.Get("/{id}", h.Contract.Get)
				cr.Put("/{id}", h.Contract.Update)
				cr.Delete("/{id}", h.Contract.Delete)
				cr.Post("/{id}/sign", h.Contract.Sign)
				cr.Post("/{id}/payments", h.Contract.Pay)
			})

			pr.Route("/events", func(er chi.Router) {
				er.Get("/", h.Event.List)
				er.Post("/", h.Event.Create)
				er.Get("/{id}", h.Event.Get)
				er.Put("/{id}", h.Event.Update)
				er.Delete("/{id}", h.Event.Delete)
				er.Put("/{id}/support", h.Event.AssignSupport)
			})

			pr.Get("/reports/{kind}", h.Report.Get)
			pr.Get("/audit", h.Audit.List)
		})
	})
}
