// Package config loads the metalfeed settings from a YAML file and
// METALFEED_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/client"
	"github.com/Sternrassler/metal-archives-client/pkg/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. METALFEED_REDIS_ADDR.
const EnvPrefix = "METALFEED"

// Config is the complete metalfeed configuration.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Server  ServerConfig  `mapstructure:"server"`
}

// SiteConfig configures the transport.
type SiteConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig enables the shared cooldown and the response cache.
// An empty Addr disables both.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	EnableCache bool          `mapstructure:"enable_cache"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedConfig configures the homepage.
type FeedConfig struct {
	ShortListSize int `mapstructure:"short_list_size"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Load reads the configuration. With an empty configPath the standard
// locations are searched and a missing file is not an error; an explicit
// path must exist.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("metalfeed")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "metalfeed"))
		}

		v.AddConfigPath("/etc/metalfeed/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	defaults := client.DefaultConfig("metalfeed/0.1 (+https://github.com/Sternrassler/metal-archives-client)")

	v.SetDefault("site.base_url", defaults.BaseURL)
	v.SetDefault("site.user_agent", defaults.UserAgent)
	v.SetDefault("site.timeout", defaults.Timeout)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enable_cache", false)
	v.SetDefault("redis.cache_ttl", defaults.CacheTTL)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")

	v.SetDefault("feed.short_list_size", 5)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute URL: %q", c.Site.BaseURL)
	}

	if strings.TrimSpace(c.Site.UserAgent) == "" {
		return fmt.Errorf("site.user_agent is required")
	}

	if c.Site.Timeout <= 0 {
		return fmt.Errorf("site.timeout must be > 0 (got %s)", c.Site.Timeout)
	}

	if c.Redis.EnableCache && c.Redis.Addr == "" {
		return fmt.Errorf("redis.enable_cache requires redis.addr")
	}
	if c.Redis.CacheTTL < 0 {
		return fmt.Errorf("redis.cache_ttl must not be negative")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}

	if c.Feed.ShortListSize < 1 {
		return fmt.Errorf("feed.short_list_size must be at least 1 (got %d)", c.Feed.ShortListSize)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	return nil
}

// ClientConfig converts the site and cache settings into a client.Config.
// The Redis client is attached by the caller.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:     c.Site.BaseURL,
		UserAgent:   c.Site.UserAgent,
		Timeout:     c.Site.Timeout,
		EnableCache: c.Redis.EnableCache,
		CacheTTL:    c.Redis.CacheTTL,
	}
}

// LoggingSetup converts the logging settings into a logging.Config.
func (c *Config) LoggingSetup() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(strings.ToLower(c.Logging.Level))
	if format, err := logging.ParseFormat(c.Logging.Format); err == nil {
		cfg.Format = format
	}
	return cfg
}
