// Package config loads the assistant configuration from an optional
// config.toml and LENTA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sternrassler/lenta-assistant/pkg/cache"
	"github.com/Sternrassler/lenta-assistant/pkg/client"
	"github.com/Sternrassler/lenta-assistant/pkg/logging"
)

// EnvPrefix is prepended to every environment override, e.g. LENTA_REDIS_ADDR.
const EnvPrefix = "LENTA"

// Database drivers accepted in database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	Lenta    LentaConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Notify   NotifyConfig
}

// HTTPConfig configures the JSON API server.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level  string
	Pretty bool
}

// LentaConfig configures the retail API pipeline.
type LentaConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Coalesce  bool
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	// Backend is one of memory, redis or none
	Backend string
}

// RedisConfig is used when the cache backend is redis.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	KeyPrefix   string
	DialTimeout time.Duration
}

// DatabaseConfig selects the relational store.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// NotifyConfig configures the discount notification job.
type NotifyConfig struct {
	Enabled        bool
	Interval       time.Duration
	WebhookURL     string
	MaxConcurrency int
}

// Load reads config.toml from the working directory (if any), applies
// environment overrides, fills defaults and validates the result.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory to search for config.toml.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
		Lenta: LentaConfig{
			BaseURL:   v.GetString("lenta.base_url"),
			UserAgent: v.GetString("lenta.user_agent"),
			Timeout:   v.GetDuration("lenta.timeout"),
			Coalesce:  v.GetBool("lenta.coalesce"),
		},
		Cache: CacheConfig{
			Backend: v.GetString("cache.backend"),
		},
		Redis: RedisConfig{
			Addr:        v.GetString("redis.addr"),
			Password:    v.GetString("redis.password"),
			DB:          v.GetInt("redis.db"),
			PoolSize:    v.GetInt("redis.pool_size"),
			KeyPrefix:   v.GetString("redis.key_prefix"),
			DialTimeout: v.GetDuration("redis.dial_timeout"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Notify: NotifyConfig{
			Enabled:        v.GetBool("notify.enabled"),
			Interval:       v.GetDuration("notify.interval"),
			WebhookURL:     v.GetString("notify.webhook_url"),
			MaxConcurrency: v.GetInt("notify.max_concurrency"),
		},
	}

	// redis.key_prefix may be set to "" on purpose to make Reset flush the database
	if !v.IsSet("redis.key_prefix") {
		cfg.Redis.KeyPrefix = cache.DefaultKeyPrefix
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = string(logging.LevelInfo)
	}
	if cfg.Lenta.BaseURL == "" {
		cfg.Lenta.BaseURL = client.DefaultBaseURL
	}
	if cfg.Lenta.UserAgent == "" {
		cfg.Lenta.UserAgent = client.DefaultUserAgent
	}
	if cfg.Lenta.Timeout == 0 {
		cfg.Lenta.Timeout = client.DefaultTimeout
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = cache.BackendMemory
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == DriverSQLite {
		cfg.Database.DSN = "lenta.db"
	}
	if cfg.Notify.Interval == 0 {
		cfg.Notify.Interval = 24 * time.Hour
	}
	if cfg.Notify.MaxConcurrency == 0 {
		cfg.Notify.MaxConcurrency = 4
	}
}

func (c *Config) validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	if u, err := url.Parse(c.Lenta.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("lenta.base_url must be an absolute URL (got %q)", c.Lenta.BaseURL)
	}
	if c.Lenta.Timeout < 0 {
		return fmt.Errorf("lenta.timeout must be >= 0 (got %s)", c.Lenta.Timeout)
	}

	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendNone:
	case cache.BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required when cache.backend is redis")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("redis.db must be >= 0 (got %d)", c.Redis.DB)
		}
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none (got %q)", c.Cache.Backend)
	}

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres (got %q)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	if c.Notify.Interval < time.Minute {
		return fmt.Errorf("notify.interval must be at least 1m (got %s)", c.Notify.Interval)
	}
	if c.Notify.MaxConcurrency < 1 {
		return fmt.Errorf("notify.max_concurrency must be >= 1 (got %d)", c.Notify.MaxConcurrency)
	}
	if c.Notify.Enabled {
		if c.Notify.WebhookURL == "" {
			return errors.New("notify.webhook_url is required when notify.enabled is true")
		}
		if u, err := url.Parse(c.Notify.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("notify.webhook_url must be an absolute URL (got %q)", c.Notify.WebhookURL)
		}
	}

	return nil
}

// CacheBackendConfig converts the cache and redis sections into a pkg/cache config.
func (c *Config) CacheBackendConfig() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:        c.Redis.Addr,
			Password:    c.Redis.Password,
			DB:          c.Redis.DB,
			PoolSize:    c.Redis.PoolSize,
			KeyPrefix:   c.Redis.KeyPrefix,
			DialTimeout: c.Redis.DialTimeout,
		},
	}
}

// ClientConfig converts the lenta section into a pipeline config using backend.
func (c *Config) ClientConfig(backend cache.Backend) client.Config {
	cfg := client.DefaultConfig(backend)
	cfg.BaseURL = c.Lenta.BaseURL
	cfg.UserAgent = c.Lenta.UserAgent
	cfg.Timeout = c.Lenta.Timeout
	cfg.CoalesceRequests = c.Lenta.Coalesce
	return cfg
}

// LoggingConfig converts the log section into a pkg/logging config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// String renders the configuration with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"http=%s log=%s cache=%s redis=%s/%d password=%s database=%s dsn=%s notify=%t/%s",
		c.HTTP.Addr,
		c.Log.Level,
		c.Cache.Backend,
		c.Redis.Addr,
		c.Redis.DB,
		mask(c.Redis.Password),
		c.Database.Driver,
		maskDSN(c.Database.DSN),
		c.Notify.Enabled,
		c.Notify.Interval,
	)
}

const maskedSecret = "xxxxx"

func mask(s string) string {
	if s == "" {
		return ""
	}
	return maskedSecret
}

// maskDSN hides the password of URL-style DSNs and of key=value DSNs.
func maskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), maskedSecret)
			return u.String()
		}
		return dsn
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=" + maskedSecret
		}
	}
	return strings.Join(fields, " ")
}
