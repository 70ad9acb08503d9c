package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/ratelimit"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Redis        RedisConfig
	NATS         NATSConfig

	// Tunables below may also come from the CONFIG_FILE overlay.
	Defaults     DefaultsConfig
	RateLimit    RateLimitConfig
	Notification notificationService.Config
	Jobs         JobsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns     int32
	QueryTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
	SecureCookies     bool
}

// AppConfig holds application configuration
type AppConfig struct {
	Port            int
	Env             string
	LogLevel        string
	FrontendURL     string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google login is configured at all.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

// RedisConfig backs the rate limiter. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig backs the cross-instance notification bus. An empty URL keeps
// delivery in process.
type NATSConfig struct {
	URL     string
	Subject string
}

type DefaultsConfig struct {
	Company company.Defaults `yaml:"company"`
	Leave   leave.Defaults   `yaml:"leave"`
}

type RateLimitConfig struct {
	Login    ratelimit.Rule `yaml:"login"`
	Register ratelimit.Rule `yaml:"register"`
	Refresh  ratelimit.Rule `yaml:"refresh"`
	Clock    ratelimit.Rule `yaml:"clock"`
}

type JobsConfig struct {
	StaleSessionAfter       time.Duration `yaml:"stale_session_after"`
	StaleSessionInterval    time.Duration `yaml:"stale_session_interval"`
	PendingApprovalInterval time.Duration `yaml:"pending_approval_interval"`
	RunTimeout              time.Duration `yaml:"run_timeout"`
}

// fileConfig is the shape of the optional YAML overlay.
type fileConfig struct {
	Defaults     *DefaultsConfig             `yaml:"defaults"`
	RateLimit    *RateLimitConfig            `yaml:"rate_limit"`
	Notification *notificationService.Config `yaml:"notification"`
	Jobs         *JobsConfig                 `yaml:"jobs"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		log.Println("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	queryTimeout, err := time.ParseDuration(getEnv("DB_QUERY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_QUERY_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         dbPort,
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "cmlabs-attendance"),
		SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		MaxConns:     int32(maxConns),
		QueryTimeout: queryTimeout,
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	config.NATS = NATSConfig{
		URL:     getEnv("NATS_URL", ""),
		Subject: getEnv("NATS_SUBJECT", "attendance.notifications"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_SHUTDOWN_TIMEOUT: %w", err)
	}

	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	allowedOrigins := getEnvSlice("ALLOWED_ORIGINS")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{frontendURL}
	}

	config.App = AppConfig{
		Port:            appPort,
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		FrontendURL:     frontendURL,
		AllowedOrigins:  allowedOrigins,
		ShutdownTimeout: shutdownTimeout,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		SecureCookies:     config.App.Env == "production",
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	config.Defaults = DefaultsConfig{
		Company: company.DefaultSettings(),
		Leave:   leave.DefaultBalances(),
	}
	config.RateLimit = DefaultRateLimits()
	config.Jobs = JobsConfig{
		StaleSessionAfter:       12 * time.Hour,
		StaleSessionInterval:    time.Hour,
		PendingApprovalInterval: 24 * time.Hour,
		RunTimeout:              2 * time.Minute,
	}
	if workers, err := strconv.Atoi(getEnv("NOTIFICATION_WORKERS", "0")); err == nil {
		config.Notification.WorkerCount = workers
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func DefaultRateLimits() RateLimitConfig {
	return RateLimitConfig{
		Login:    ratelimit.Rule{Limit: 10, Window: time.Minute},
		Register: ratelimit.Rule{Limit: 5, Window: time.Hour},
		Refresh:  ratelimit.Rule{Limit: 30, Window: time.Minute},
		Clock:    ratelimit.Rule{Limit: 6, Window: time.Minute},
	}
}

// applyFile overlays the YAML file at path. Sections missing from the file
// keep their current values.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	return c.applyYAML(data)
}

func (c *Config) applyYAML(data []byte) error {
	// Pre-seeding the sections lets the file override single fields.
	overlay := fileConfig{
		Defaults:     &c.Defaults,
		RateLimit:    &c.RateLimit,
		Notification: &c.Notification,
		Jobs:         &c.Jobs,
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("CLIENT_SECRET is required when CLIENT_ID is set")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("REDIRECT_URL is required when CLIENT_ID is set")
		}
	}
	if !c.Defaults.Company.Geofence.IsConfigured() {
		return fmt.Errorf("defaults.company.geofence must have a center and a positive radius")
	}
	if _, err := time.LoadLocation(c.Defaults.Company.Timezone); err != nil {
		return fmt.Errorf("defaults.company.timezone: %w", err)
	}
	l := c.Defaults.Leave
	if l.Sick < 0 || l.Annual < 0 || l.Unpaid < 0 {
		return fmt.Errorf("defaults.leave balances cannot be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
