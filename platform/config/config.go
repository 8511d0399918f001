// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"path/filepath"
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
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// IntakeConfig provides settings for the lead intake API.
type IntakeConfig interface {
	GetIntakeAPIKey() string
	GetIntakeRatePerSecond() float64
	GetIntakeBurst() int
}

// BusinessConfig provides locations of the per-business markdown documents.
type BusinessConfig interface {
	GetBusinessesDir() string
	GetPlaybookPath() string
}

// AIConfig provides settings for the message-generation collaborator.
type AIConfig interface {
	GetAnthropicAPIKey() string
	GetGenerationModel() string
	GetGenerationMaxTokens() int64
	GetGenerationRatePerMinute() int
	IsGenerationEnabled() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetProcessInterval() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	IntakeAPIKey        string
	IntakeRatePerSecond float64
	IntakeBurst         int
	DataDir             string
	AnthropicAPIKey     string
	GenerationModel     string
	GenerationMaxTokens int64
	GenerationRPM       int
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	ProcessInterval     time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// IntakeConfig implementation
func (c *Config) GetIntakeAPIKey() string          { return c.IntakeAPIKey }
func (c *Config) GetIntakeRatePerSecond() float64  { return c.IntakeRatePerSecond }
func (c *Config) GetIntakeBurst() int              { return c.IntakeBurst }

// BusinessConfig implementation
func (c *Config) GetBusinessesDir() string {
	return filepath.Join(c.DataDir, "businesses")
}
func (c *Config) GetPlaybookPath() string {
	return filepath.Join(c.DataDir, "playbooks", "conversion", "follow-up-sequences.md")
}

// AIConfig implementation
func (c *Config) GetAnthropicAPIKey() string       { return c.AnthropicAPIKey }
func (c *Config) GetGenerationModel() string       { return c.GenerationModel }
func (c *Config) GetGenerationMaxTokens() int64    { return c.GenerationMaxTokens }
func (c *Config) GetGenerationRatePerMinute() int  { return c.GenerationRPM }
func (c *Config) IsGenerationEnabled() bool        { return c.AnthropicAPIKey != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string               { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool         { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string         { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int          { return c.AsynqConcurrency }
func (c *Config) GetProcessInterval() time.Duration { return c.ProcessInterval }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		IntakeAPIKey:        getEnv("INTAKE_API_KEY", ""),
		IntakeRatePerSecond: mustFloat(getEnv("INTAKE_RATE_PER_SECOND", "5")),
		IntakeBurst:         mustInt(getEnv("INTAKE_BURST", "10")),
		DataDir:             getEnv("DATA_DIR", "."),
		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		GenerationModel:     getEnv("GENERATION_MODEL", "claude-sonnet-4-5"),
		GenerationMaxTokens: int64(mustInt(getEnv("GENERATION_MAX_TOKENS", "2048"))),
		GenerationRPM:       mustInt(getEnv("GENERATION_RATE_PER_MINUTE", "20")),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "leads"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "1")),
		ProcessInterval:     mustDuration(getEnv("PROCESS_INTERVAL", "15m")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
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

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
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
