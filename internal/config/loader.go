package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "progressor.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PROGRESSOR_PORT")
	setString(&cfg.Server.CORSOrigin, "PROGRESSOR_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "PROGRESSOR_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "PROGRESSOR_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "PROGRESSOR_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "PROGRESSOR_PG_MAX_CONN_IDLE_TIME")
	setString(&cfg.Gemini.BaseURL, "GEMINI_BASE_URL")
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")
	setString(&cfg.Classifier.BaseURL, "HF_BASE_URL")
	setString(&cfg.Classifier.Token, "HF_API_TOKEN")
	setString(&cfg.Classifier.Model, "HF_MODEL")
	setString(&cfg.Auth.JWTSecret, "PROGRESSOR_JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "PROGRESSOR_TOKEN_TTL")
	setInt(&cfg.Auth.BcryptCost, "PROGRESSOR_BCRYPT_COST")
	setInt64(&cfg.Cache.MaxBytes, "PROGRESSOR_CACHE_MAX_BYTES")
	setString(&cfg.Logging.Level, "PROGRESSOR_LOG_LEVEL")
	setString(&cfg.Logging.Service, "PROGRESSOR_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "PROGRESSOR_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "PROGRESSOR_BREAKER_TIMEOUT")
}

// validate checks invariants that would otherwise fail at runtime.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn must not be empty")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be at least 1")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set (PROGRESSOR_JWT_SECRET)")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be between 4 and 31")
	}
	if cfg.Cache.MaxBytes < 1<<10 {
		return errors.New("cache.max_bytes must be at least 1KiB")
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
