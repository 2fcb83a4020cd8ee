package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Analytics struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Timeout int    `yaml:"timeout"` // seconds
		Proxy   string `yaml:"proxy"`
		// Mock serves generated sample data instead of calling the service.
		Mock bool `yaml:"mock"`
	} `yaml:"analytics"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
	} `yaml:"log"`
	Filters struct {
		DefaultStart string   `yaml:"default_start"`
		DefaultEnd   string   `yaml:"default_end"`
		Regions      []string `yaml:"regions"`
	} `yaml:"filters"`
	Forecast struct {
		Days               int    `yaml:"days"`
		DefaultCategory    string `yaml:"default_category"`
		DefaultSubCategory string `yaml:"default_sub_category"`
	} `yaml:"forecast"`
	Cache struct {
		Backend    string `yaml:"backend"`     // none, memory, redis
		TTL        int    `yaml:"ttl"`         // seconds
		MaxEntries int    `yaml:"max_entries"` // memory backend only
		RedisAddr  string `yaml:"redis_addr"`
		RedisDB    int    `yaml:"redis_db"`
	} `yaml:"cache"`
	Breaker struct {
		Enabled     *bool  `yaml:"enabled"`
		MaxRequests uint32 `yaml:"max_requests"` // requests allowed while half-open
		Interval    int    `yaml:"interval"`     // seconds between count resets while closed
		Timeout     int    `yaml:"timeout"`      // seconds the breaker stays open
	} `yaml:"breaker"`
	Schedule struct {
		RollCron string `yaml:"roll_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ANALYTICS_BASE_URL"); v != "" {
		cfg.Analytics.BaseURL = v
	}
	if v := os.Getenv("ANALYTICS_API_KEY"); v != "" {
		cfg.Analytics.APIKey = v
	}
	if v := os.Getenv("ANALYTICS_MOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Mock = b
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Analytics.Proxy = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Log.Environment = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("CRON_ROLL"); v != "" {
		cfg.Schedule.RollCron = v
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Analytics.Timeout == 0 {
		cfg.Analytics.Timeout = 30
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Environment == "" {
		cfg.Log.Environment = "development"
	}
	if cfg.Filters.DefaultStart == "" {
		cfg.Filters.DefaultStart = "2023-01-01"
	}
	if cfg.Filters.DefaultEnd == "" {
		cfg.Filters.DefaultEnd = "2025-12-31"
	}
	if len(cfg.Filters.Regions) == 0 {
		cfg.Filters.Regions = []string{"North", "South", "East", "West", "Central"}
	}
	if cfg.Forecast.Days == 0 {
		cfg.Forecast.Days = 90
	}
	if cfg.Forecast.DefaultCategory == "" {
		cfg.Forecast.DefaultCategory = "Furniture"
	}
	if cfg.Forecast.DefaultSubCategory == "" {
		cfg.Forecast.DefaultSubCategory = "Chairs"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "none"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1024
	}
	if cfg.Breaker.Enabled == nil {
		enabled := true
		cfg.Breaker.Enabled = &enabled
	}
	if cfg.Breaker.MaxRequests == 0 {
		cfg.Breaker.MaxRequests = 3
	}
	if cfg.Breaker.Interval == 0 {
		cfg.Breaker.Interval = 10
	}
	if cfg.Breaker.Timeout == 0 {
		cfg.Breaker.Timeout = 60
	}
	if cfg.Schedule.RollCron == "" {
		cfg.Schedule.RollCron = "0 5 0 * * *"
	}
	if _, ok := os.LookupEnv("SQLITE_PATH"); !ok && cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/retailpulse.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Analytics.BaseURL == "" && !c.Analytics.Mock {
		return fmt.Errorf("analytics.base_url is required")
	}
	if c.Analytics.Timeout < 0 {
		return fmt.Errorf("analytics.timeout must not be negative")
	}
	start, end, err := c.DefaultRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("filters.default_end is before filters.default_start")
	}
	if c.Forecast.Days <= 0 {
		return fmt.Errorf("forecast.days must be positive")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}
	if c.Breaker.Interval < 0 || c.Breaker.Timeout < 0 {
		return fmt.Errorf("breaker.interval and breaker.timeout must not be negative")
	}
	switch c.Cache.Backend {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	return nil
}

// DefaultRange parses the configured initial date range.
func (c *Config) DefaultRange() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, c.Filters.DefaultStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("filters.default_start: %w", err)
	}
	end, err := time.Parse(dateLayout, c.Filters.DefaultEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("filters.default_end: %w", err)
	}
	return start, end, nil
}

// AnalyticsTimeout returns the request timeout as a duration.
func (c *Config) AnalyticsTimeout() time.Duration {
	return time.Duration(c.Analytics.Timeout) * time.Second
}

// CacheTTL returns the cache entry lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// BreakerInterval returns the closed-state count reset period.
func (c *Config) BreakerInterval() time.Duration {
	return time.Duration(c.Breaker.Interval) * time.Second
}

// BreakerTimeout returns how long the breaker stays open.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.Breaker.Timeout) * time.Second
}
