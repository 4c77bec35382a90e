package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

// Cache driver names.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

const envPrefix = "REMINDERS_"

type Config struct {
	Timezone  string          `koanf:"timezone"`
	Backend   BackendConfig   `koanf:"backend"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notify    NotifyConfig    `koanf:"notify"`
	Cache     CacheConfig     `koanf:"cache"`
	Log       LogConfig       `koanf:"log"`
	UI        UIConfig        `koanf:"ui"`
}

type BackendConfig struct {
	BaseURL string      `koanf:"base_url"`
	Timeout int         `koanf:"timeout"` // Seconds
	Token   string      `koanf:"token"`
	Retry   RetryConfig `koanf:"retry"`
}

// RetryConfig controls retries of transport failures and 5xx responses.
// MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts       int `koanf:"max_attempts"`
	InitialIntervalMS int `koanf:"initial_interval_ms"`
	MaxIntervalMS     int `koanf:"max_interval_ms"`
}

type SchedulerConfig struct {
	TickInterval    int `koanf:"tick_interval"`    // Seconds between due-time scans
	RefreshInterval int `koanf:"refresh_interval"` // Seconds between full refreshes (0 = only at start)
}

type NotifyConfig struct {
	Duration int            `koanf:"duration"` // Seconds a notice stays visible
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `koanf:"enabled"`
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type CacheConfig struct {
	Driver string      `koanf:"driver"`
	Path   string      `koanf:"path"` // SQLite database file
	Redis  RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Key      string `koanf:"key"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// REMINDERS_BACKEND__BASE_URL -> backend.base_url
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Shorthands matching the web client's environment
	if token := os.Getenv("REMINDERS_TOKEN"); token != "" {
		k.Set("backend.token", token)
	}
	if baseURL := os.Getenv("REMINDERS_API_BASE_URL"); baseURL != "" {
		k.Set("backend.base_url", baseURL)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Cache.Path = expandPath(cfg.Cache.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend base_url must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	if c.Backend.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}

	if c.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("scheduler tick_interval must be positive, got %d", c.Scheduler.TickInterval)
	}

	if c.Scheduler.RefreshInterval < 0 {
		return fmt.Errorf("scheduler refresh_interval must not be negative")
	}

	switch c.Cache.Driver {
	case CacheSQLite:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache path is required for the sqlite driver")
		}
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache redis addr is required for the redis driver")
		}
	case CacheNone:
	default:
		return fmt.Errorf("unknown cache driver: %s (supported: %s, %s, %s)",
			c.Cache.Driver, CacheSQLite, CacheRedis, CacheNone)
	}

	if c.Notify.Telegram.Enabled && (c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "") {
		return fmt.Errorf("telegram notifications need bot_token and chat_id")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}

	return nil
}

// Location resolves the time zone used to interpret reminder dates.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Scheduler.TickInterval) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Scheduler.RefreshInterval) * time.Second
}

func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.Notify.Duration) * time.Second
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
