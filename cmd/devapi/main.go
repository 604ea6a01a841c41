package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contactbook/internal/auth"
	"contactbook/internal/config"
	"contactbook/internal/logging"
	"contactbook/internal/server"
	"contactbook/internal/store"
)

func main() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{Environment: cfg.Environment, Level: cfg.LogLevel})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("devapi stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.APIConfig, logger zerolog.Logger) error {
	gin.SetMode(cfg.GinMode)

	st := store.NewWithOptions(store.Options{StateFile: cfg.StateFile, Logger: logger})

	tokenCfg := auth.DefaultTokenConfig(cfg.MasterSecret)
	tokenCfg.Expiry = cfg.TokenExpiry

	limiter := server.NewAuthLimiter(cfg.AuthRateLimitPerMinute)
	defer limiter.Stop()

	router := server.NewRouter(server.Deps{
		Store:       st,
		TokenConfig: tokenCfg,
		Log:         logger,
		AuthLimiter: limiter,
	})

	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), router)
	tls := server.TLSFiles{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
	if err := server.Run(ctx, srv, tls, logger); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
