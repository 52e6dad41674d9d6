package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	S3       S3Config
	LLM      LLMConfig
	Cache    CacheConfig
	Filter   FilterConfig
	Corpus   CorpusConfig
	Sentry   SentryConfig
	Email    EmailConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	RequestTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration. An empty AccessSecret disables the
// optional auth middleware; token issuance happens outside this service.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// S3Config holds S3 storage configuration for LLM call-log archival
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// LLMConfig holds LLM gateway configuration
type LLMConfig struct {
	APIKey          string
	BaseURL         string
	DefaultModel    string
	Temperature     float64
	RequestTimeout  time.Duration
	RatePerMinute   int
	AcquireTimeout  time.Duration
	FailThreshold   int
	CooldownSeconds time.Duration
	LogDir          string
}

// CacheConfig holds assessment cache configuration
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// FilterConfig holds provider filter configuration
type FilterConfig struct {
	Workers int
}

// CorpusConfig holds corpus snapshot configuration
type CorpusConfig struct {
	SnapshotPath string
	TaxonomyPath string
}

// SentryConfig holds Sentry error reporting configuration
type SentryConfig struct {
	DSN string
}

// EmailConfig holds transactional email configuration
type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			RequestTimeout: getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 90*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "scout"),
			Password:        getEnv("DB_PASSWORD", "scout"),
			DBName:          getEnv("DB_NAME", "scout"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "eu-central"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		LLM: LLMConfig{
			APIKey:          getEnv("LLM_API_KEY", ""),
			BaseURL:         getEnv("LLM_BASE_URL", ""),
			DefaultModel:    getEnv("LLM_DEFAULT_MODEL", "claude-3-5-sonnet-20241022"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			RequestTimeout:  getEnvAsDuration("LLM_REQUEST_TIMEOUT", 60*time.Second),
			RatePerMinute:   getEnvAsInt("RATE_LIMIT_PER_MIN", 60),
			AcquireTimeout:  getEnvAsDuration("RATE_LIMIT_ACQUIRE_TIMEOUT", 30*time.Second),
			FailThreshold:   getEnvAsInt("CIRCUIT_FAIL_THRESHOLD", 5),
			CooldownSeconds: getEnvAsDuration("CIRCUIT_COOLDOWN_SECONDS", 60*time.Second),
			LogDir:          getEnv("LLM_LOG_DIR", "./llm-logs"),
		},
		Cache: CacheConfig{
			TTL:     getEnvAsDuration("CACHE_TTL_SECONDS", 86400*time.Second),
			MaxSize: getEnvAsInt("CACHE_MAX_SIZE", 1000),
		},
		Filter: FilterConfig{
			Workers: getEnvAsInt("FILTER_WORKERS", 3),
		},
		Corpus: CorpusConfig{
			SnapshotPath: getEnv("CORPUS_SNAPSHOT_PATH", ""),
			TaxonomyPath: getEnv("TAXONOMY_PATH", "./config/taxonomy.yaml"),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromAddress:  getEnv("EMAIL_FROM", "Scout <noreply@scout.example.com>"),
		},
	}

	// Validate required fields
	if cfg.JWT.AccessSecret != "" && cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required when JWT_ACCESS_SECRET is set")
	}
	if cfg.LLM.RatePerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MIN must be positive")
	}
	if cfg.Cache.MaxSize <= 0 {
		return nil, fmt.Errorf("CACHE_MAX_SIZE must be positive")
	}
	if cfg.Filter.Workers <= 0 {
		return nil, fmt.Errorf("FILTER_WORKERS must be positive")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MigrateURL returns the database URL used by the migration runner
func (c *DatabaseConfig) MigrateURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Plain integers are treated as seconds (CACHE_TTL_SECONDS=86400).
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
