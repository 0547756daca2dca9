package config

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	App       AppConfig
	CORS      CORSConfig
	Email     EmailConfig
	Templates TemplatesConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
	Debug   bool
	Port    string
	Host    string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// EmailConfig holds SendGrid and mailbox configuration
type EmailConfig struct {
	APIKey         string
	BaseURL        string
	FromEmail      string
	FromName       string
	SupportEmail   string
	TimeoutSeconds int
}

// TemplatesConfig points at an on-disk template directory. Empty means the
// templates embedded in the binary are used.
type TemplatesConfig struct {
	Dir string
}

// RateLimitConfig limits inquiry submissions per client IP. Zero disables it.
// X-Forwarded-For is only honoured when the connecting peer is listed in
// TrustedProxies (IPs or CIDR ranges).
type RateLimitConfig struct {
	PerMinute      int
	TrustedProxies []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level         string
	Format        string // "dev" (console) or "prod" (JSON)
	File          string
	FileMaxSizeMB int
	FileBackups   int
	FileMaxAge    int
}

// Load loads configuration from the environment, reading a .env file first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "Lavish Travels & Tours API"),
			Version: getEnv("APP_VERSION", "1.0.0"),
			Debug:   getEnvAsBool("DEBUG", false),
			Port:    getEnv("PORT", "8000"),
			Host:    getEnv("HOST", "0.0.0.0"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders: []string{"*"},
			MaxAge:         86400,
		},
		Email: EmailConfig{
			APIKey:         os.Getenv("SENDGRID_API_KEY"),
			BaseURL:        getEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
			FromEmail:      os.Getenv("SENDGRID_FROM_EMAIL"),
			FromName:       getEnv("SENDGRID_FROM_NAME", ""),
			SupportEmail:   os.Getenv("SUPPORT_EMAIL"),
			TimeoutSeconds: getEnvAsInt("EMAIL_SEND_TIMEOUT_SECONDS", 10),
		},
		Templates: TemplatesConfig{
			Dir: getEnv("TEMPLATES_DIR", ""),
		},
		RateLimit: RateLimitConfig{
			PerMinute:      getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		},
		Log: LogConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "dev"),
			File:          getEnv("LOG_FILE", ""),
			FileMaxSizeMB: getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 50),
			FileBackups:   getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			FileMaxAge:    getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 14),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if c.Email.APIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY must be set")
	}
	if c.Email.FromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL must be set")
	}
	if _, err := mail.ParseAddress(c.Email.FromEmail); err != nil {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is not a valid address: %w", err)
	}
	if c.Email.SupportEmail == "" {
		return fmt.Errorf("SUPPORT_EMAIL must be set")
	}
	if _, err := mail.ParseAddress(c.Email.SupportEmail); err != nil {
		return fmt.Errorf("SUPPORT_EMAIL is not a valid address: %w", err)
	}
	if c.Email.TimeoutSeconds <= 0 {
		return fmt.Errorf("EMAIL_SEND_TIMEOUT_SECONDS must be greater than 0")
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	for _, p := range c.RateLimit.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR range", p)
		}
	}
	return nil
}

// SendTimeout returns the provider call timeout as a duration
func (c *EmailConfig) SendTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AllowsAnyOrigin reports whether the wildcard origin is configured
func (c *CORSConfig) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
