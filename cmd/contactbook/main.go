package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contactbook/internal/app"
	"contactbook/internal/config"
	"contactbook/internal/logging"
	"contactbook/internal/server"
	"contactbook/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{Environment: cfg.Environment, Level: cfg.LogLevel})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("contactbook stopped")
		os.Exit(1)
	}
}

// run owns every resource of the process so deferred cleanup completes
// before main exits.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	gin.SetMode(cfg.GinMode)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("close storage")
		}
	}()

	logger.Info().
		Str("api", a.Client.BaseURL()).
		Str("storage", cfg.Storage.Driver).
		Bool("authenticated", a.Session.IsAuthenticated()).
		Msg("contactbook ready")

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	router := web.NewRouter(a, web.Options{
		Hosts: []string{addr, fmt.Sprintf("localhost:%d", cfg.Port)},
	})
	if err := server.Run(ctx, server.NewHTTPServer(addr, router), server.TLSFiles{}, logger); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
