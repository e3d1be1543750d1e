package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the analysis engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Platforms PlatformsConfig `yaml:"platforms"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig controls the HTTP, gRPC and metrics listeners.
type ServerConfig struct {
	HTTPAddress     string        `yaml:"httpAddress"`
	GRPCAddress     string        `yaml:"grpcAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// PlatformsConfig points at the YAML platform pack extending the built-in socket tables.
type PlatformsConfig struct {
	Path string `yaml:"path"`
}

// RateLimitConfig controls the Redis-backed fixed-window limiter on analysis routes.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	Limit       int           `yaml:"limit"`
	Window      time.Duration `yaml:"window"`
	KeyPrefix   string        `yaml:"keyPrefix"`
	DialTimeout time.Duration `yaml:"dialTimeout"`
}

// CORSConfig lists the browser origins allowed to call the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SILICONSAGE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddress:     ":8000",
			GRPCAddress:     ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Logging:   LoggingConfig{Level: "info", JSON: false},
		Platforms: PlatformsConfig{Path: "configs/platforms/default.yaml"},
		RateLimit: RateLimitConfig{
			Enabled:     false,
			Addr:        "localhost:6379",
			Limit:       60,
			Window:      time.Minute,
			KeyPrefix:   "siliconsage:ratelimit:",
			DialTimeout: 2 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SILICONSAGE_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v, ok := os.LookupEnv("SILICONSAGE_GRPC_ADDRESS"); ok {
		cfg.Server.GRPCAddress = v
	}
	if v := os.Getenv("SILICONSAGE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("SILICONSAGE_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("SILICONSAGE_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Server.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("SILICONSAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SILICONSAGE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("SILICONSAGE_PLATFORMS_PATH"); v != "" {
		cfg.Platforms.Path = v
	}
	if v := os.Getenv("SILICONSAGE_RATE_LIMIT_ENABLED"); v != "" {
		cfg.RateLimit.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("SILICONSAGE_RATE_LIMIT_ADDR"); v != "" {
		cfg.RateLimit.Addr = v
	}
	if v := os.Getenv("SILICONSAGE_RATE_LIMIT_PASSWORD"); v != "" {
		cfg.RateLimit.Password = v
	}
	if v := os.Getenv("SILICONSAGE_RATE_LIMIT_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.DB = db
		}
	}
	if v := os.Getenv("SILICONSAGE_RATE_LIMIT_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Limit = limit
		}
	}
	if v := os.Getenv("SILICONSAGE_RATE_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if v := os.Getenv("SILICONSAGE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
}
