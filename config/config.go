package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Projects  ProjectsConfig  `mapstructure:"projects"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ScraperConfig holds outbound fetch settings
type ScraperConfig struct {
	Timeout           time.Duration  `mapstructure:"timeout"`
	MaxRetries        int            `mapstructure:"max_retries"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second"`
	Burst             int            `mapstructure:"burst"`
	UserAgent         string         `mapstructure:"user_agent"`
	Headless          HeadlessConfig `mapstructure:"headless"`
}

// HeadlessConfig controls the optional chromedp pass
type HeadlessConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	ExecPath string        `mapstructure:"exec_path"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Settle   time.Duration `mapstructure:"settle"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds per-IP limits for inbound requests
type RateLimitConfig struct {
	PerIP  int `mapstructure:"per_ip"` // API requests per minute
	Login  int `mapstructure:"login"`  // attempts per 15 minutes
	Signup int `mapstructure:"signup"` // attempts per hour
}

// AuthConfig holds account and token settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	MaxUsers   int           `mapstructure:"max_users"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// ProjectsConfig holds project quota settings
type ProjectsConfig struct {
	EarlyAccountCutoff int `mapstructure:"early_account_cutoff"`
	EarlyQuota         int `mapstructure:"early_quota"`
	StandardQuota      int `mapstructure:"standard_quota"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopclip/")

	// Environment variable settings
	v.SetEnvPrefix("SHOPCLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile reads ./.env when present. Variables already set in the
// environment win over the file.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Scraper defaults
	v.SetDefault("scraper.timeout", "15s")
	v.SetDefault("scraper.max_retries", 0)
	v.SetDefault("scraper.requests_per_second", 2)
	v.SetDefault("scraper.burst", 5)
	v.SetDefault("scraper.user_agent", "")
	v.SetDefault("scraper.headless.enabled", false)
	v.SetDefault("scraper.headless.exec_path", "")
	v.SetDefault("scraper.headless.timeout", "30s")
	v.SetDefault("scraper.headless.settle", "2s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.login", 5)
	v.SetDefault("ratelimit.signup", 3)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "720h") // 30 days
	v.SetDefault("auth.max_users", 100)
	v.SetDefault("auth.bcrypt_cost", 12)

	// Project quota defaults
	v.SetDefault("projects.early_account_cutoff", 100)
	v.SetDefault("projects.early_quota", 50)
	v.SetDefault("projects.standard_quota", 10)

	v.SetDefault("storage.sqlite_path", "data/shopclip.db")
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Auth.JWTSecret == "" {
		if config.Server.Environment == "production" {
			return fmt.Errorf("JWT secret is required in production (set SHOPCLIP_AUTH_JWT_SECRET)")
		}
		config.Auth.JWTSecret = "shopclip-dev-secret"
	}

	if config.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got: %s", config.Scraper.Timeout)
	}

	if config.Scraper.Headless.Enabled && config.Scraper.Headless.Timeout <= 0 {
		return fmt.Errorf("headless timeout must be positive, got: %s", config.Scraper.Headless.Timeout)
	}

	if config.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required")
	}

	switch strings.ToLower(config.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got: %s", config.Log.Level)
	}

	return nil
}
