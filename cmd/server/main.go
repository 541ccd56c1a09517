// Package main runs the fintech analyst HTTP server: a tiered market data
// and narrative generation service that degrades to synthetic output when
// no provider can serve.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintech-analyst/config"
	"fintech-analyst/internal/api"
	"fintech-analyst/internal/app"
	"fintech-analyst/observability"
	"fintech-analyst/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Report history is optional: without a database the service still
	// answers every request, it just keeps no trace.
	var history app.HistoryStore
	if cfg.HasDatabase() {
		repo, err := repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Warn("database unavailable, report history disabled", "error", err)
		} else if err := repo.EnsureSchema(ctx); err != nil {
			observability.Warn("schema setup failed, report history disabled", "error", err)
			repo.Close()
		} else {
			history = repo
			observability.Info("report history enabled")
		}
	}

	application, err := app.New(ctx, cfg, history)
	if err != nil {
		observability.Fatal("failed to initialize application", "error", err)
	}
	defer application.Shutdown()

	for _, st := range application.ProviderStatus() {
		observability.Info("provider registered",
			"provider", st.ID,
			"resource", st.Resource,
			"priority", st.Priority,
			"enabled", st.Enabled)
	}

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("server stopped")
}
