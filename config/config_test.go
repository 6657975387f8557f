package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Environment: "development"},
		Scraper: ScraperConfig{Timeout: 15 * time.Second},
		Cache:   CacheConfig{Type: "memory"},
		Auth:    AuthConfig{JWTSecret: "test-secret"},
		Storage: StorageConfig{SQLitePath: "data/test.db"},
		Log:     LogConfig{Level: "info"},
	}
}

func TestLoad(t *testing.T) {
	envVars := []string{
		"SHOPCLIP_SERVER_PORT",
		"SHOPCLIP_SERVER_ENVIRONMENT",
		"SHOPCLIP_SCRAPER_TIMEOUT",
		"SHOPCLIP_SCRAPER_HEADLESS_ENABLED",
		"SHOPCLIP_CACHE_TYPE",
		"SHOPCLIP_CACHE_REDIS_URL",
		"SHOPCLIP_CACHE_TTL",
		"SHOPCLIP_RATELIMIT_PER_IP",
		"SHOPCLIP_AUTH_JWT_SECRET",
		"SHOPCLIP_AUTH_MAX_USERS",
		"SHOPCLIP_STORAGE_SQLITE_PATH",
		"SHOPCLIP_LOG_LEVEL",
	}
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, k := range envVars {
			os.Unsetenv(k)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "3000" {
			t.Errorf("Server.Port = %s, want 3000", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:*" {
			t.Errorf("Server.AllowedOrigins = %v, want [http://localhost:*]", cfg.Server.AllowedOrigins)
		}
		if cfg.Scraper.Timeout != 15*time.Second {
			t.Errorf("Scraper.Timeout = %v, want 15s", cfg.Scraper.Timeout)
		}
		if cfg.Scraper.Headless.Enabled {
			t.Errorf("Scraper.Headless.Enabled = true, want false")
		}
		if cfg.Scraper.MaxRetries != 0 {
			t.Errorf("Scraper.MaxRetries = %d, want 0", cfg.Scraper.MaxRetries)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 || cfg.RateLimit.Login != 5 || cfg.RateLimit.Signup != 3 {
			t.Errorf("RateLimit = %+v, want per_ip 100, login 5, signup 3", cfg.RateLimit)
		}
		if cfg.Auth.TokenTTL != 720*time.Hour {
			t.Errorf("Auth.TokenTTL = %v, want 720h", cfg.Auth.TokenTTL)
		}
		if cfg.Auth.MaxUsers != 100 {
			t.Errorf("Auth.MaxUsers = %d, want 100", cfg.Auth.MaxUsers)
		}
		if cfg.Auth.JWTSecret == "" {
			t.Errorf("Auth.JWTSecret is empty, want development fallback")
		}
		if cfg.Projects.EarlyQuota != 50 || cfg.Projects.StandardQuota != 10 {
			t.Errorf("Projects = %+v, want early 50, standard 10", cfg.Projects)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHOPCLIP_SERVER_PORT", "9090")
		os.Setenv("SHOPCLIP_SERVER_ENVIRONMENT", "production")
		os.Setenv("SHOPCLIP_SCRAPER_TIMEOUT", "20s")
		os.Setenv("SHOPCLIP_SCRAPER_HEADLESS_ENABLED", "true")
		os.Setenv("SHOPCLIP_CACHE_TYPE", "redis")
		os.Setenv("SHOPCLIP_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("SHOPCLIP_CACHE_TTL", "24h")
		os.Setenv("SHOPCLIP_RATELIMIT_PER_IP", "200")
		os.Setenv("SHOPCLIP_AUTH_JWT_SECRET", "prod-secret")
		os.Setenv("SHOPCLIP_AUTH_MAX_USERS", "250")
		os.Setenv("SHOPCLIP_STORAGE_SQLITE_PATH", "/var/lib/shopclip/db.sqlite")
		os.Setenv("SHOPCLIP_LOG_LEVEL", "debug")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Scraper.Timeout != 20*time.Second {
			t.Errorf("Scraper.Timeout = %v, want 20s", cfg.Scraper.Timeout)
		}
		if !cfg.Scraper.Headless.Enabled {
			t.Errorf("Scraper.Headless.Enabled = false, want true")
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Auth.JWTSecret != "prod-secret" {
			t.Errorf("Auth.JWTSecret = %s, want prod-secret", cfg.Auth.JWTSecret)
		}
		if cfg.Auth.MaxUsers != 250 {
			t.Errorf("Auth.MaxUsers = %d, want 250", cfg.Auth.MaxUsers)
		}
		if cfg.Storage.SQLitePath != "/var/lib/shopclip/db.sqlite" {
			t.Errorf("Storage.SQLitePath = %s, want /var/lib/shopclip/db.sqlite", cfg.Storage.SQLitePath)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
		}
	})

	t.Run("fails validation when JWT secret is missing in production", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHOPCLIP_SERVER_ENVIRONMENT", "production")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing JWT secret")
		}
		if !strings.Contains(err.Error(), "JWT secret is required") {
			t.Errorf("Load() error = %v, want 'JWT secret is required'", err)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHOPCLIP_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SHOPCLIP_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		os.Setenv("TEST_OVERRIDE", "existing-value")

		envContent := "TEST_OVERRIDE=new-value"
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}

		os.Unsetenv("TEST_OVERRIDE")
	})

	t.Run("feeds Load through the SHOPCLIP prefix", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := os.WriteFile(".env", []byte("SHOPCLIP_SERVER_PORT=4321\n"), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		os.Unsetenv("SHOPCLIP_SERVER_PORT")
		defer os.Unsetenv("SHOPCLIP_SERVER_PORT")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "4321" {
			t.Errorf("Server.Port = %s, want 4321", cfg.Server.Port)
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fills a development JWT secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.JWTSecret = ""

		if err := validate(cfg); err != nil {
			t.Fatalf("validate() error = %v, want nil", err)
		}
		if cfg.Auth.JWTSecret == "" {
			t.Error("Auth.JWTSecret is empty after validate in development")
		}
	})

	t.Run("fails when JWT secret is empty in production", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Environment = "production"
		cfg.Auth.JWTSecret = ""

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty JWT secret")
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache.Type = "invalid-type"

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid cache type")
		}
	})

	t.Run("validates redis cache type with URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache = CacheConfig{Type: "redis", RedisURL: "redis://localhost:6379"}

		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for redis cache without URL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Cache = CacheConfig{Type: "redis"}

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for redis without URL")
		}
	})

	t.Run("fails for non-positive scraper timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Scraper.Timeout = 0

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero timeout")
		}
	})

	t.Run("fails for headless without timeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Scraper.Headless = HeadlessConfig{Enabled: true}

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for headless without timeout")
		}
	})

	t.Run("fails for unknown log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Log.Level = "verbose"

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for unknown log level")
		}
	})
}
