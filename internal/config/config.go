package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTP     HTTPConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Admin    BootstrapAdmin
	CacheTTL time.Duration
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Address string // listen address (e.g., ":8080")
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

// BootstrapAdmin describes the initial administrator created at startup
// when no matching admin account exists yet.
type BootstrapAdmin struct {
	StudentID string
	Password  string
	Name      string
}

// Load loads configuration from the environment (and a .env file when
// present). JWT_SECRET is required.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := fromEnv()
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET
// in development. WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	_ = godotenv.Load()
	cfg := fromEnv()
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Env: getEnv("ENV", "dev"),
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "app.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTExpiry: getDuration("JWT_EXPIRES_IN", 12*time.Hour),
		},
		Admin: BootstrapAdmin{
			StudentID: getEnv("BOOTSTRAP_ADMIN_ID", "admin"),
			Password:  getEnv("BOOTSTRAP_ADMIN_PASSWORD", "change-me-now"),
			Name:      getEnv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		},
		CacheTTL: getDuration("BOOKING_CACHE_TTL", time.Minute),
	}
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return defaultVal
	}
	return d
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, HTTP: %s, DB: %s, Auth: *** (masked) ***}",
		c.Env, c.HTTP.Address, c.Database.Path)
}
