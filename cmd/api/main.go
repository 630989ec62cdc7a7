// PaperBot REST API server: digest reads, subscriber management, and
// admin-triggered runs.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperbot-dev/paperbot/internal/api"
	"github.com/paperbot-dev/paperbot/internal/app"
)

func main() {
	cfgPath := getEnv("PAPERBOT_CONFIG", "paperbot.yaml")

	cfg, err := app.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.API.JWTSecret == "" {
		slog.Error("api.jwt_secret (or JWT_SECRET) must be set")
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	server := api.NewServer(a.Store(), api.Config{
		JWTSecret:         cfg.API.JWTSecret,
		AdminEmail:        cfg.API.AdminEmail,
		AdminPasswordHash: cfg.API.AdminPasswordHash,
	}, func(ctx context.Context, day string) error {
		return a.RunDay(ctx, day)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.API.Port,
		Handler: corsMiddleware(server.Routes()),
	}

	go func() {
		slog.Info("starting REST API server", "port", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// corsMiddleware allows a local dashboard frontend during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "http://localhost:3000")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
