package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the messaging service
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Provider ProviderConfig
	Dispatch DispatchConfig
	Phone    PhoneConfig
	Logging  LoggingConfig
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name            string
	Port            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration for the provider token cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TokenTTL time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers            []string
	TopicMessageSent   string
	TopicMessageFailed string
}

// ProviderConfig holds chat-provider HTTP client configuration
type ProviderConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	RatePerSecond  float64
	RateBurst      int
}

// DispatchConfig holds the outbound message worker pool configuration
type DispatchConfig struct {
	Workers   int
	QueueSize int
}

// PhoneConfig holds country-specific phone normalization parameters
type PhoneConfig struct {
	CountryCode    string
	MobilePrefixes string
	NSNLength      int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("PROVIDER_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TOKEN_TTL: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}

	ratePerSecond, err := strconv.ParseFloat(getEnv("PROVIDER_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_RATE_PER_SECOND: %w", err)
	}

	rateBurst, err := strconv.Atoi(getEnv("PROVIDER_RATE_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_RATE_BURST: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("DISPATCH_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_WORKERS: %w", err)
	}

	queueSize, err := strconv.Atoi(getEnv("DISPATCH_QUEUE_SIZE", "256"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_QUEUE_SIZE: %w", err)
	}

	nsnLength, err := strconv.Atoi(getEnv("PHONE_NSN_LENGTH", "9"))
	if err != nil {
		return nil, fmt.Errorf("invalid PHONE_NSN_LENGTH: %w", err)
	}

	cfg := &Config{
		Service: ServiceConfig{
			Name:            getEnv("SERVICE_NAME", "madrasa-messaging"),
			Port:            getEnv("SERVICE_PORT", "8087"),
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "madrasa_messaging"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			TokenTTL: tokenTTL,
		},
		Kafka: KafkaConfig{
			Brokers:            strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			TopicMessageSent:   getEnv("KAFKA_TOPIC_MESSAGE_SENT", "messaging.message.sent"),
			TopicMessageFailed: getEnv("KAFKA_TOPIC_MESSAGE_FAILED", "messaging.message.failed"),
		},
		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", ""),
			APIKey:         getEnv("PROVIDER_API_KEY", ""),
			RequestTimeout: providerTimeout,
			RatePerSecond:  ratePerSecond,
			RateBurst:      rateBurst,
		},
		Dispatch: DispatchConfig{
			Workers:   workers,
			QueueSize: queueSize,
		},
		Phone: PhoneConfig{
			CountryCode:    getEnv("PHONE_COUNTRY_CODE", "212"),
			MobilePrefixes: getEnv("PHONE_MOBILE_PREFIXES", "67"),
			NSNLength:      nsnLength,
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL is required")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("DISPATCH_WORKERS must be positive")
	}

	if c.Phone.CountryCode == "" || c.Phone.MobilePrefixes == "" {
		return fmt.Errorf("phone normalization parameters are required")
	}

	return nil
}

// Out exposes sub-config pointers for fx DI
func Out() (*Config, *ServiceConfig, *DatabaseConfig, *RedisConfig, *KafkaConfig, *ProviderConfig, *DispatchConfig, *PhoneConfig, *LoggingConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	return cfg, &cfg.Service, &cfg.Database, &cfg.Redis, &cfg.Kafka, &cfg.Provider, &cfg.Dispatch, &cfg.Phone, &cfg.Logging, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
