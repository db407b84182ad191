package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	BackendTimeout  time.Duration `json:"backend_timeout"`

	// News source
	UseMockNews bool   `json:"use_mock_news"`
	DatabaseURL string `json:"database_url"`

	// Redis configuration
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// Auth provider
	AuthJWTSecret  string `json:"auth_jwt_secret"`
	AuthJWTIssuer  string `json:"auth_jwt_issuer"`
	AuthAPIURL     string `json:"auth_api_url"`
	AuthServiceKey string `json:"auth_service_key"`

	// CloudFlare R2 Configuration (fixture documents)
	R2Endpoint       string `json:"r2_endpoint"`
	R2AccessKey      string `json:"r2_access_key"`
	R2SecretKey      string `json:"r2_secret_key"`
	R2Bucket         string `json:"r2_bucket"`
	FixtureObjectKey string `json:"fixture_object_key"`

	// Rate limiting
	RateLimitRPS   int `json:"rate_limit_rps"`
	RateLimitBurst int `json:"rate_limit_burst"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv builds a Config from the current environment without validating it.
func FromEnv() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		BackendTimeout:  getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),

		UseMockNews: getEnvAsBool("USE_MOCK_NEWS", true),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "newsinflight:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		AuthJWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTIssuer:  getEnv("AUTH_JWT_ISSUER", ""),
		AuthAPIURL:     getEnv("AUTH_API_URL", ""),
		AuthServiceKey: getEnv("AUTH_SERVICE_KEY", ""),

		R2Endpoint:       getEnv("R2_ENDPOINT", ""),
		R2AccessKey:      getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey:      getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:         getEnv("R2_BUCKET", ""),
		FixtureObjectKey: getEnv("FIXTURE_OBJECT_KEY", ""),

		RateLimitRPS:   getEnvAsInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.AuthJWTSecret == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required outside development"))
	}
	if !c.UseMockNews && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when USE_MOCK_NEWS=false"))
	}
	if c.FixtureObjectKey != "" && c.R2Bucket == "" {
		errs = append(errs, errors.New("R2_BUCKET is required when FIXTURE_OBJECT_KEY is set"))
	}
	if c.BackendTimeout <= 0 {
		errs = append(errs, errors.New("BACKEND_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := strings.TrimSpace(getEnv(name, ""))
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
