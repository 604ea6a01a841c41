package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"contactbook/internal/storage"
)

// Config configures the contactbook web client.
type Config struct {
	Port        int
	GinMode     string
	Environment string
	LogLevel    string
	APIBaseURL  string
	APITimeout  time.Duration
	Storage     storage.Options
}

// FileConfig is the optional YAML file named by CONFIG_FILE. Environment
// variables override anything it sets.
type FileConfig struct {
	Port              int    `yaml:"port"`
	GinMode           string `yaml:"ginMode"`
	Environment       string `yaml:"environment"`
	LogLevel          string `yaml:"logLevel"`
	APIBaseURL        string `yaml:"apiBaseURL"`
	APITimeoutSeconds int    `yaml:"apiTimeoutSeconds"`
	StorageDriver     string `yaml:"storageDriver"`
	StorageFile       string `yaml:"storageFile"`
	RedisAddr         string `yaml:"redisAddr"`
	RedisPassword     string `yaml:"redisPassword"`
	RedisDB           int    `yaml:"redisDB"`
	RedisKeyPrefix    string `yaml:"redisKeyPrefix"`
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		Port:        5173,
		GinMode:     "release",
		Environment: "development",
		LogLevel:    "info",
		APIBaseURL:  "http://localhost:3000/api",
		APITimeout:  10 * time.Second,
		Storage: storage.Options{
			Driver: "file",
			File:   "contactbook-storage.json",
		},
	}

	if path := env.Getenv("CONFIG_FILE"); path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		fc.apply(&cfg)
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT")
	}

	setString(env, "GIN_MODE", &cfg.GinMode)
	setString(env, "ENVIRONMENT", &cfg.Environment)
	setString(env, "LOG_LEVEL", &cfg.LogLevel)
	setString(env, "API_BASE_URL", &cfg.APIBaseURL)

	if raw := env.Getenv("API_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid API_TIMEOUT_SECONDS")
		}
		cfg.APITimeout = time.Duration(seconds) * time.Second
	}

	setString(env, "STORAGE_DRIVER", &cfg.Storage.Driver)
	setString(env, "STORAGE_FILE", &cfg.Storage.File)
	setString(env, "REDIS_ADDR", &cfg.Storage.RedisAddr)
	setString(env, "REDIS_PASSWORD", &cfg.Storage.RedisPassword)
	setString(env, "REDIS_KEY_PREFIX", &cfg.Storage.RedisPrefix)
	if raw := env.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("invalid REDIS_DB")
		}
		cfg.Storage.RedisDB = db
	}

	switch cfg.Storage.Driver {
	case "file":
		if cfg.Storage.File == "" {
			return Config{}, fmt.Errorf("STORAGE_FILE is required for the file driver")
		}
	case "redis":
		if cfg.Storage.RedisAddr == "" {
			return Config{}, fmt.Errorf("REDIS_ADDR is required for the redis driver")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.GinMode != "" {
		cfg.GinMode = fc.GinMode
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.APITimeoutSeconds > 0 {
		cfg.APITimeout = time.Duration(fc.APITimeoutSeconds) * time.Second
	}
	if fc.StorageDriver != "" {
		cfg.Storage.Driver = fc.StorageDriver
	}
	if fc.StorageFile != "" {
		cfg.Storage.File = fc.StorageFile
	}
	if fc.RedisAddr != "" {
		cfg.Storage.RedisAddr = fc.RedisAddr
	}
	if fc.RedisPassword != "" {
		cfg.Storage.RedisPassword = fc.RedisPassword
	}
	if fc.RedisDB > 0 {
		cfg.Storage.RedisDB = fc.RedisDB
	}
	if fc.RedisKeyPrefix != "" {
		cfg.Storage.RedisPrefix = fc.RedisKeyPrefix
	}
}

func setString(env Env, key string, dst *string) {
	if raw := env.Getenv(key); raw != "" {
		*dst = raw
	}
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid PORT")
	}
	return port, nil
}
