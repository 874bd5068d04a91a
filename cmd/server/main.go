package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wakelan/wakelan/internal/api"
	"github.com/wakelan/wakelan/internal/auth"
	"github.com/wakelan/wakelan/internal/config"
	"github.com/wakelan/wakelan/internal/database"
	"github.com/wakelan/wakelan/internal/model"
	"github.com/wakelan/wakelan/internal/netscan"
	"github.com/wakelan/wakelan/internal/store"
	"github.com/wakelan/wakelan/internal/wol"
)

func main() {
	// A local .env is optional; env overrides still apply without one.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := initLogger(cfg.Logging)
	logger.Info("Starting WakeLAN server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("DB init failed: %v", err)
	}
	defer pool.Close()

	// Run embedded migrations (compiled into the binary)
	if err := database.RunMigrations(cfg); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	st := store.NewPG(pool)

	authService, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.GetJWTExpiry(), st)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	if err := bootstrapAdmin(ctx, st, cfg.Auth, logger); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	locator := netscan.NewARPLocator(logger)
	prober := netscan.NewPingProber(cfg.Probe.GetPingTimeout(), logger)
	enricher := netscan.NewEnricher(locator, prober, cfg.Probe.EnrichWorkers, logger)
	dispatcher := wol.NewDispatcher(cfg.Wake.BroadcastAddr, logger)

	router := api.NewRouter(cfg, logger, st, authService, enricher, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped gracefully")
}

// bootstrapAdmin ensures the configured admin account exists. An existing
// account is left untouched so a config password change never silently
// rewrites credentials.
func bootstrapAdmin(ctx context.Context, st store.Store, cfg config.AuthConfig, logger *slog.Logger) error {
	_, err := st.GetUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	user, err := st.CreateUser(ctx, cfg.AdminUsername, hash, model.RoleAdmin)
	if err != nil {
		return err
	}

	logger.Info("Admin account created", "username", user.Username)
	return nil
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
