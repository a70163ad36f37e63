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

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"

	configloader "github.com/harshmriduhash/callbot/external/config"
	"github.com/harshmriduhash/callbot/external/mediaserver"
	repositoryimpl "github.com/harshmriduhash/callbot/external/repository"
	responderimpl "github.com/harshmriduhash/callbot/external/responder"
	synthesizerimpl "github.com/harshmriduhash/callbot/external/synthesizer"
	transcriberimpl "github.com/harshmriduhash/callbot/external/transcriber"
	"github.com/harshmriduhash/callbot/internal/config"
	"github.com/harshmriduhash/callbot/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching media server")
	runServer(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	synthesizerimpl.RegisterDI(injector)
	responderimpl.RegisterDI(injector)
	session.RegisterDI(injector)
	mediaserver.RegisterDI(injector)

	return injector
}

func runServer(cfg *config.Config, injector do.Injector) {
	server, err := do.Invoke[*mediaserver.Server](injector)
	if err != nil {
		slog.Error("failed to resolve media server", "error", err)
		os.Exit(1)
	}
	coordinator, err := do.Invoke[*session.Coordinator](injector)
	if err != nil {
		slog.Error("failed to resolve session coordinator", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		slog.Info("startup: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	coordinator.Shutdown()
	slog.Info("shutdown complete")
}
