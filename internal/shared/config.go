package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	ConfigEnvVar      = "TODOLIST_CONFIG"
	DefaultConfigFile = "todolist.toml"
)

// AppConfig general application configurations
type AppConfig struct {
	Environment string `toml:"environment"`

	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Cache     CacheConfig     `toml:"cache"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`

	// Rate Limiting
	RateLimitEnabled bool                       `toml:"rate_limit_enabled"`
	RateLimitConfigs map[string]RateLimitConfig `toml:"rate_limits"`

	// Response Cache
	ResponseCacheEnabled bool                           `toml:"response_cache_enabled"`
	ResponseCacheConfigs map[string]ResponseCacheConfig `toml:"response_cache"`

	// HTTPS Enforcement
	EnforceHTTPS bool `toml:"enforce_https"`
}

type ServerConfig struct {
	Port         string        `toml:"port"`
	GinMode      string        `toml:"gin_mode"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type StoreConfig struct {
	// Backend is "file" or "memory".
	Backend     string `toml:"backend"`
	Path        string `toml:"path"`
	FailOpen    bool   `toml:"fail_open"`
	DirectWrite bool   `toml:"direct_write"`
}

type CacheConfig struct {
	// Backend is "none", "memory" or "redis".
	Backend       string        `toml:"backend"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	RedisKey      string        `toml:"redis_key"`
}

type LoggingConfig struct {
	LokiURL string `toml:"loki_url"`
}

// RateLimitConfig configuration for rate limiting
type RateLimitConfig struct {
	Requests int           `toml:"requests"`
	Window   time.Duration `toml:"window"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment: "development",
		Server: ServerConfig{
			Port:         "8080",
			GinMode:      "release",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    "todos.json",
		},
		Cache: CacheConfig{
			Backend:   "none",
			TTL:       30 * time.Second,
			RedisAddr: "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "todolist",
			ServiceVersion: "1.0.0",
			MetricsPort:    "9091",
		},
		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"GET /todos":             {Requests: 100, Window: time.Minute},
			"GET /todos/board":       {Requests: 100, Window: time.Minute},
			"POST /todos":            {Requests: 30, Window: time.Minute},
			"PATCH /todos/:id":       {Requests: 30, Window: time.Minute},
			"POST /todos/:id/toggle": {Requests: 30, Window: time.Minute},
			"DELETE /todos/:id":      {Requests: 30, Window: time.Minute},
			"default":                {Requests: 60, Window: time.Minute},
		},
		ResponseCacheEnabled: false,
		ResponseCacheConfigs: map[string]ResponseCacheConfig{
			"/todos": {
				TTL:     3 * time.Second,
				Enabled: true,
			},
			"/todos/board": {
				TTL:     3 * time.Second,
				Enabled: true,
			},
		},
		EnforceHTTPS: false,
	}
}

// LoadConfig layers defaults, the TOML file and environment overrides. The
// file is optional unless named explicitly through TODOLIST_CONFIG.
func LoadConfig() (*AppConfig, error) {
	cfg := GetDefaultConfig()

	path, explicit := os.LookupEnv(ConfigEnvVar)
	if !explicit || path == "" {
		path, explicit = DefaultConfigFile, false
	}

	if err := loadConfigFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Telemetry.Environment = cfg.Environment

	return cfg, nil
}

func loadConfigFile(cfg *AppConfig, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	return nil
}

func loadFromEnv(cfg *AppConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.GinMode = v
		if v == "release" {
			cfg.Environment = "production"
		}
	}
	if v := os.Getenv("TODOS_FILE"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("ENFORCE_HTTPS"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ENFORCE_HTTPS: %w", err)
		}
		cfg.EnforceHTTPS = enabled
	}
	if v := os.Getenv("RESPONSE_CACHE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RESPONSE_CACHE_ENABLED: %w", err)
		}
		cfg.ResponseCacheEnabled = enabled
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := os.Getenv("METRICS_PORT"); v != "" {
		cfg.Telemetry.MetricsPort = v
	}
	if v := os.Getenv("LOKI_URL"); v != "" {
		cfg.Logging.LokiURL = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}

	return nil
}

func (c *AppConfig) Validate() error {
	switch c.Store.Backend {
	case "file", "memory":
	default:
		return fmt.Errorf("store.backend %q: want file or memory", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend %q: want none, memory or redis", c.Cache.Backend)
	}

	for route, rl := range c.RateLimitConfigs {
		if rl.Requests <= 0 || rl.Window <= 0 {
			return fmt.Errorf("rate_limits %q: requests and window must be positive", route)
		}
	}

	return nil
}
