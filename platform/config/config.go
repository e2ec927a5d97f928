// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int32
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitEnabled() bool
}

// UploadConfig provides limits for CSV uploads.
type UploadConfig interface {
	GetMaxUploadSize() int64
}

// TransitionConfig bounds the lead status transition unit of work.
type TransitionConfig interface {
	GetTransitionWaitTimeout() time.Duration
	GetTransitionExecTimeout() time.Duration
}

// PhoneConfig provides the region used to parse national phone numbers.
type PhoneConfig interface {
	GetPhoneDefaultRegion() string
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCallbackReminderHour() int
	IsSchedulerEnabled() bool
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucketImports() string
	IsMinIOEnabled() bool
}

// SMTPConfig provides settings for outgoing email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsSMTPEnabled() bool
}

// SeedConfig provides the bootstrap admin credentials.
type SeedConfig interface {
	GetAdminEmail() string
	GetAdminPassword() string
	GetCreateSampleAgent() bool
}

// LogConfig provides logging output settings.
type LogConfig interface {
	GetEnv() string
	GetLogFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	DatabaseMaxConns      int32
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	RefreshTokenTTL       time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitEnabled      bool
	MaxUploadSize         int64
	TransitionWaitTimeout time.Duration
	TransitionExecTimeout time.Duration
	PhoneDefaultRegion    string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	CallbackReminderHour  int
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOBucketImports    string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromName         string
	EmailFromAddress      string
	AdminEmail            string
	AdminPassword         string
	CreateSampleAgent     bool
	LogFile               string
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int32 { return c.DatabaseMaxConns }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration  { return c.AccessTokenTTL }
func (c *Config) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }
func (c *Config) GetRateLimitEnabled() bool { return c.RateLimitEnabled }

// UploadConfig implementation
func (c *Config) GetMaxUploadSize() int64 { return c.MaxUploadSize }

// PhoneConfig implementation
func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// TransitionConfig implementation
func (c *Config) GetTransitionWaitTimeout() time.Duration { return c.TransitionWaitTimeout }
func (c *Config) GetTransitionExecTimeout() time.Duration { return c.TransitionExecTimeout }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool    { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string    { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int     { return c.AsynqConcurrency }
func (c *Config) GetCallbackReminderHour() int { return c.CallbackReminderHour }
func (c *Config) IsSchedulerEnabled() bool     { return c.RedisURL != "" }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucketImports() string { return c.MinIOBucketImports }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsSMTPEnabled() bool         { return c.SMTPHost != "" && c.EmailFromAddress != "" }

// SeedConfig implementation
func (c *Config) GetAdminEmail() string      { return c.AdminEmail }
func (c *Config) GetAdminPassword() string   { return c.AdminPassword }
func (c *Config) GetCreateSampleAgent() bool { return c.CreateSampleAgent }

// LogConfig implementation
func (c *Config) GetEnv() string     { return c.Env }
func (c *Config) GetLogFile() string { return c.LogFile }

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:      int32(mustInt64(getEnv("DATABASE_MAX_CONNS", "25"))),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		RefreshTokenTTL:       mustDuration(getEnv("JWT_REFRESH_TTL", "720h")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitEnabled:      strings.EqualFold(getEnv("RATE_LIMIT_ENABLED", "true"), "true"),
		MaxUploadSize:         mustInt64(getEnv("MAX_FILE_SIZE", "10485760")),
		TransitionWaitTimeout: mustDuration(getEnv("TRANSITION_WAIT_TIMEOUT", "10s")),
		TransitionExecTimeout: mustDuration(getEnv("TRANSITION_EXEC_TIMEOUT", "15s")),
		PhoneDefaultRegion:    strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
		CallbackReminderHour:  int(mustInt64(getEnv("CALLBACK_REMINDER_HOUR", "9"))),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucketImports:    getEnv("MINIO_BUCKET_IMPORTS", "lead-imports"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Leads Portal"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", ""),
		AdminEmail:            getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", "admin123"),
		CreateSampleAgent:     strings.EqualFold(getEnv("CREATE_SAMPLE_AGENT", "false"), "true"),
		LogFile:               getEnv("LOG_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		if strings.EqualFold(cfg.Env, "production") {
			return nil, fmt.Errorf("JWT_ACCESS_SECRET is required in production")
		}
		cfg.JWTAccessSecret = "development-secret"
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be a positive number of bytes")
	}
	if cfg.TransitionWaitTimeout <= 0 || cfg.TransitionExecTimeout <= 0 {
		return nil, fmt.Errorf("TRANSITION_WAIT_TIMEOUT and TRANSITION_EXEC_TIMEOUT must be positive durations")
	}
	if cfg.CallbackReminderHour < 0 || cfg.CallbackReminderHour > 23 {
		return nil, fmt.Errorf("CALLBACK_REMINDER_HOUR must be between 0 and 23")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
