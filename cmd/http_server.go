package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/epic-events-crm/internal/audit"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/client"
	"github.com/frahmantamala/epic-events-crm/internal/contract"
	"github.com/frahmantamala/epic-events-crm/internal/event"
	"github.com/frahmantamala/epic-events-crm/internal/report"
	"github.com/frahmantamala/epic-events-crm/internal/transport/middleware"
	"github.com/frahmantamala/epic-events-crm/internal/transport/rest"
	"github.com/frahmantamala/epic-events-crm/internal/user"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP API. Clients authenticate with POST /api/v1/auth/login and send the token as a bearer header.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return startHTTPServer(cliContext(cmd.Context()))
	},
}

func startHTTPServer(ctx context.Context) error {
	deps, err := initializeDependencies(ctx, Options{})
	if err != nil {
		return err
	}
	defer deps.Close()

	router, err := newRouter(ctx, deps)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("server stopped")
	return nil
}

// newRouter mounts every HTTP handler over deps.
func newRouter(ctx context.Context, deps *Dependencies) (*chi.Mux, error) {
	doc, err := rest.LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	checks := map[string]rest.Pinger{deps.Config.Database.Driver: deps.SQL}
	if deps.Redis != nil {
		checks["redis"] = rest.PingerFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}

	handlers := rest.Handlers{
		Health:   rest.NewHealthHandler(checks, deps.Logger),
		Auth:     auth.NewHandler(deps.Auth),
		User:     user.NewHandler(deps.Users),
		Client:   client.NewHandler(deps.Clients),
		Contract: contract.NewHandler(deps.Contracts),
		Event:    event.NewHandler(deps.Events),
		Report:   report.NewHandler(deps.Reports),
		Audit:    audit.NewHandler(deps.Audit),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, handlers, rest.RouterOptions{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		LoginLimiter:   middleware.NewIPRateLimiter(deps.Config.Server.LoginRateLimit, deps.Config.Server.LoginRateBurst, deps.Logger),
		OpenAPI:        doc,
		Logger:         deps.Logger,
	})
	return router, nil
}
