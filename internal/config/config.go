// Package config builds the immutable service configuration. Values come
// from an optional YAML file (TRIPOD_CONFIG), then environment variables
// override individual fields. A local .env file is honoured in development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr              = ":8000"
	defaultAlgorithm         = "HS256"
	defaultAccessTTLMinutes  = 30
	defaultRefreshTTLMinutes = 60 * 24 * 7
	defaultMaxBodyBytes      = 1 << 20
)

// Config holds everything the service needs at startup. It is constructed
// once and passed by reference; nothing mutates it afterwards.
type Config struct {
	Env  string `yaml:"env"`
	Addr string `yaml:"addr"`

	DatabaseURL string `yaml:"database_url"`

	JWT struct {
		SecretKey  string        `yaml:"secret_key"`
		Algorithm  string        `yaml:"algorithm"`
		AccessTTL  time.Duration `yaml:"-"`
		RefreshTTL time.Duration `yaml:"-"`

		AccessTTLMinutes  int `yaml:"access_ttl_minutes"`
		RefreshTTLMinutes int `yaml:"refresh_ttl_minutes"`
	} `yaml:"jwt"`

	CORSOrigins []string `yaml:"cors_origins"`

	Rate struct {
		Enabled   bool `yaml:"enabled"`
		Burst     int  `yaml:"burst"`
		PerSecond int  `yaml:"per_second"`
	} `yaml:"rate"`

	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// Load assembles the configuration. The only hard requirement is the JWT
// secret; everything else has a development default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Env = "development"
	cfg.Addr = defaultAddr
	cfg.JWT.Algorithm = defaultAlgorithm
	cfg.JWT.AccessTTLMinutes = defaultAccessTTLMinutes
	cfg.JWT.RefreshTTLMinutes = defaultRefreshTTLMinutes
	cfg.CORSOrigins = []string{"http://localhost:5173"}
	cfg.Rate.Enabled = true
	cfg.Rate.Burst = 20
	cfg.Rate.PerSecond = 10
	cfg.MaxBodyBytes = defaultMaxBodyBytes

	if path := strings.TrimSpace(os.Getenv("TRIPOD_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("config: TRIPOD_JWT_SECRET_KEY is required")
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		cfg.JWT.AccessTTLMinutes = defaultAccessTTLMinutes
	}
	if cfg.JWT.RefreshTTLMinutes <= 0 {
		cfg.JWT.RefreshTTLMinutes = defaultRefreshTTLMinutes
	}
	cfg.JWT.AccessTTL = time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	cfg.JWT.RefreshTTL = time.Duration(cfg.JWT.RefreshTTLMinutes) * time.Minute

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := getenv("TRIPOD_ENV"); v != "" {
		cfg.Env = v
	}
	if v := getenv("TRIPOD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("TRIPOD_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := getenv("TRIPOD_JWT_SECRET_KEY"); v != "" {
		cfg.JWT.SecretKey = v
	}
	if v := getenv("TRIPOD_JWT_ALGORITHM"); v != "" {
		cfg.JWT.Algorithm = v
	}
	if v, ok := getint("TRIPOD_ACCESS_TOKEN_TTL_MINUTES"); ok {
		cfg.JWT.AccessTTLMinutes = v
	}
	if v, ok := getint("TRIPOD_REFRESH_TOKEN_TTL_MINUTES"); ok {
		cfg.JWT.RefreshTTLMinutes = v
	}
	if v := getenv("TRIPOD_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				origins = append(origins, item)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v := getenv("TRIPOD_RATE_ENABLED"); v != "" {
		cfg.Rate.Enabled = v == "true" || v == "1"
	}
	if v, ok := getint("TRIPOD_RATE_BURST"); ok {
		cfg.Rate.Burst = v
	}
	if v, ok := getint("TRIPOD_RATE_PER_SECOND"); ok {
		cfg.Rate.PerSecond = v
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getint(key string) (int, bool) {
	raw := getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
