// Collaborative code editor server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/shanti-jangam/collaborative-code-env/internal/api"
	"github.com/shanti-jangam/collaborative-code-env/internal/config"
	"github.com/shanti-jangam/collaborative-code-env/internal/middleware"
	"github.com/shanti-jangam/collaborative-code-env/internal/room"
	"github.com/shanti-jangam/collaborative-code-env/internal/sandbox"
	"github.com/shanti-jangam/collaborative-code-env/internal/store"
	"github.com/shanti-jangam/collaborative-code-env/internal/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize the room store.
	var repo store.Store
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		repo, err = store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
	default:
		repo = store.NewMemory()
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Store ready", "driver", cfg.StoreDriver)

	// Initialize the execution sandbox.
	var executor sandbox.Executor
	switch cfg.ExecBackend {
	case config.BackendDocker:
		executor, err = sandbox.NewDockerExecutor(cfg.SandboxImage)
		if err != nil {
			slog.Error("Failed to initialize Docker executor", "error", err)
			os.Exit(1)
		}
	default:
		executor = sandbox.NewProcessExecutor()
	}

	workspaces, err := sandbox.NewWorkspaceManager(cfg.WorkspaceDir)
	if err != nil {
		slog.Error("Failed to initialize workspace manager", "error", err)
		os.Exit(1)
	}
	dispatcher := sandbox.NewDispatcher(executor, workspaces, cfg.ExecTimeout, cfg.CompileTimeout)

	// Initialize the realtime layer.
	hub := ws.NewHub()
	coordinator := room.NewCoordinator(repo, hub)
	wsHandler := ws.NewHandler(hub, coordinator, cfg.ClientURL, cfg.IsDevelopment())

	// Initialize handlers.
	executeHandler := api.NewExecuteHandler(dispatcher)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	corsOrigins := []string{"*"}
	if !cfg.IsDevelopment() {
		corsOrigins = []string{cfg.ClientURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	// Routes.
	healthHandler.RegisterHealth(r)
	executeHandler.RegisterRoutes(r)
	r.Get("/ws", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket connections are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Start background cleanup.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sandbox.StartSweeper(ctx, workspaces, repo, cfg.SweepInterval, cfg.WorkspaceMaxAge)

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
