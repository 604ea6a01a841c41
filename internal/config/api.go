package config

import (
	"fmt"
	"strconv"
	"time"
)

// APIConfig configures devapi, the local stand-in backend.
type APIConfig struct {
	Port                   int
	MasterSecret           string
	GinMode                string
	Environment            string
	LogLevel               string
	TLSCertFile            string
	TLSKeyFile             string
	TokenExpiry            time.Duration
	StateFile              string
	AuthRateLimitPerMinute int
}

func LoadAPIConfig() (APIConfig, error) {
	return LoadAPIConfigFromEnv(osEnv{})
}

func LoadAPIConfigFromEnv(env Env) (APIConfig, error) {
	cfg := APIConfig{
		Port:                   3000,
		GinMode:                "release",
		Environment:            "development",
		LogLevel:               "info",
		TokenExpiry:            7 * 24 * time.Hour,
		AuthRateLimitPerMinute: 10,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return APIConfig{}, err
		}
		cfg.Port = port
	}

	cfg.MasterSecret = env.Getenv("MASTER_SECRET")
	if cfg.MasterSecret == "" {
		return APIConfig{}, fmt.Errorf("MASTER_SECRET is required")
	}

	setString(env, "GIN_MODE", &cfg.GinMode)
	setString(env, "ENVIRONMENT", &cfg.Environment)
	setString(env, "LOG_LEVEL", &cfg.LogLevel)

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return APIConfig{}, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if raw := env.Getenv("TOKEN_EXPIRY_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return APIConfig{}, fmt.Errorf("invalid TOKEN_EXPIRY_SECONDS")
		}
		cfg.TokenExpiry = time.Duration(seconds) * time.Second
	}

	cfg.StateFile = env.Getenv("STATE_FILE")

	if raw := env.Getenv("AUTH_RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return APIConfig{}, fmt.Errorf("invalid AUTH_RATE_LIMIT_PER_MINUTE")
		}
		cfg.AuthRateLimitPerMinute = n
	}

	return cfg, nil
}
